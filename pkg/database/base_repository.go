package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseRepository 通用数据访问接口，错误原样返回给调用方 service 归类
type BaseRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Count(ctx context.Context) (int64, error)
}

type BaseRepositoryImpl[T any] struct {
	db *gorm.DB
}

func NewBaseRepository[T any](db *gorm.DB) *BaseRepositoryImpl[T] {
	return &BaseRepositoryImpl[T]{
		db: db,
	}
}

// DB returns a session bound to ctx.
func (r *BaseRepositoryImpl[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *BaseRepositoryImpl[T]) Create(ctx context.Context, entity *T) error {
	return r.DB(ctx).Create(entity).Error
}

func (r *BaseRepositoryImpl[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	err := r.DB(ctx).First(&entity, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *BaseRepositoryImpl[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	err := r.DB(ctx).Model(&entity).Count(&count).Error
	return count, err
}
