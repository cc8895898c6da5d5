package repository

import (
	"context"

	"github.com/RigelNana/arktutor/pkg/database"
	"github.com/RigelNana/arktutor/services/study-service/models"

	"gorm.io/gorm"
)

type GradeRepository interface {
	database.BaseRepository[models.Grade]
	ListByFilter(ctx context.Context, filter models.GradeFilter) ([]*models.Grade, error)
}

type GradeRepositoryImpl struct {
	*database.BaseRepositoryImpl[models.Grade]
}

func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &GradeRepositoryImpl{BaseRepositoryImpl: database.NewBaseRepository[models.Grade](db)}
}

// ListByFilter 返回某位教师给出的成绩，按日期倒序
func (r *GradeRepositoryImpl) ListByFilter(ctx context.Context, filter models.GradeFilter) ([]*models.Grade, error) {
	query := r.DB(ctx).Model(&models.Grade{}).Where("teacher_id = ?", filter.TeacherID)

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", filter.EndDate.UTC())
	}
	if filter.MinScore != nil {
		query = query.Where("score >= ?", *filter.MinScore)
	}
	if filter.MaxScore != nil {
		query = query.Where("score <= ?", *filter.MaxScore)
	}

	var grades []*models.Grade
	err := query.Order("date DESC").Order("created_at DESC").Find(&grades).Error
	return grades, err
}
