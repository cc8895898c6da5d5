package repository

import (
	"context"

	"github.com/RigelNana/arktutor/pkg/database"
	"github.com/RigelNana/arktutor/services/auth-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthRepository 凭据数据访问接口
type AuthRepository interface {
	database.BaseRepository[models.Credential]
	WithTx(tx *gorm.DB) AuthRepository
	GetByUsername(ctx context.Context, username string) (*models.Credential, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Credential, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// UpdatePasswordHash 按 user_id 更新密码哈希，记录不存在时返回 gorm.ErrRecordNotFound
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}

type AuthRepositoryImpl struct {
	*database.BaseRepositoryImpl[models.Credential]
}

func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &AuthRepositoryImpl{BaseRepositoryImpl: database.NewBaseRepository[models.Credential](db)}
}

func (r *AuthRepositoryImpl) WithTx(tx *gorm.DB) AuthRepository {
	return NewAuthRepository(tx)
}

func (r *AuthRepositoryImpl) GetByUsername(ctx context.Context, username string) (*models.Credential, error) {
	var cred models.Credential
	err := r.DB(ctx).Where("username = ?", username).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *AuthRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Credential, error) {
	var cred models.Credential
	err := r.DB(ctx).Where("user_id = ?", userID).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *AuthRepositoryImpl) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Credential{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *AuthRepositoryImpl) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	result := r.DB(ctx).Model(&models.Credential{}).Where("user_id = ?", userID).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
