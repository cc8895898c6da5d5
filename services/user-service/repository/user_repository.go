package repository

import (
	"context"

	"github.com/RigelNana/arktutor/pkg/database"
	"github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	database.BaseRepository[models.User]
	// WithTx 返回绑定到事务 tx 的仓储副本
	WithTx(tx *gorm.DB) UserRepository
	CreateStudentProfile(ctx context.Context, profile *models.StudentProfile) error
	CreateTeacherProfile(ctx context.Context, profile *models.TeacherProfile) error
	GetStudentProfile(ctx context.Context, id uuid.UUID) (*models.StudentProfile, error)
	GetTeacherProfile(ctx context.Context, id uuid.UUID) (*models.TeacherProfile, error)
}

type UserRepositoryImpl struct {
	*database.BaseRepositoryImpl[models.User]
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepositoryImpl: database.NewBaseRepository[models.User](db),
	}
}

func (r *UserRepositoryImpl) WithTx(tx *gorm.DB) UserRepository {
	return NewUserRepository(tx)
}

func (r *UserRepositoryImpl) CreateStudentProfile(ctx context.Context, profile *models.StudentProfile) error {
	return r.DB(ctx).Create(profile).Error
}

func (r *UserRepositoryImpl) CreateTeacherProfile(ctx context.Context, profile *models.TeacherProfile) error {
	return r.DB(ctx).Create(profile).Error
}

func (r *UserRepositoryImpl) GetStudentProfile(ctx context.Context, id uuid.UUID) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	err := r.DB(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *UserRepositoryImpl) GetTeacherProfile(ctx context.Context, id uuid.UUID) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	err := r.DB(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
