package repository

import (
	"context"

	"github.com/RigelNana/arktutor/pkg/database"
	"github.com/RigelNana/arktutor/services/study-service/models"

	"gorm.io/gorm"
)

type SessionRepository interface {
	database.BaseRepository[models.StudySession]
	// ListForTeacher 返回分配给该教师的学生的学习记录，附带学生姓名
	ListForTeacher(ctx context.Context, filter models.SessionFilter) ([]*models.SessionWithStudent, error)
}

type SessionRepositoryImpl struct {
	*database.BaseRepositoryImpl[models.StudySession]
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &SessionRepositoryImpl{BaseRepositoryImpl: database.NewBaseRepository[models.StudySession](db)}
}

func (r *SessionRepositoryImpl) ListForTeacher(ctx context.Context, filter models.SessionFilter) ([]*models.SessionWithStudent, error) {
	query := r.DB(ctx).Table("sessions").
		Select("sessions.*, users.first_name || ' ' || users.last_name AS student_name").
		Joins("JOIN students ON students.id = sessions.student_id").
		Joins("JOIN users ON users.id = sessions.student_id").
		Where("students.assigned_teacher_id = ?", filter.TeacherID)

	if filter.StudentID != nil {
		query = query.Where("sessions.student_id = ?", *filter.StudentID)
	}
	if filter.StartDate != nil {
		query = query.Where("sessions.date >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		query = query.Where("sessions.date <= ?", filter.EndDate.UTC())
	}
	if filter.MinDuration != nil {
		query = query.Where("sessions.length_minutes >= ?", *filter.MinDuration)
	}
	if filter.MaxDuration != nil {
		query = query.Where("sessions.length_minutes <= ?", *filter.MaxDuration)
	}

	var rows []*models.SessionWithStudent
	err := query.Order("sessions.date DESC").Scan(&rows).Error
	return rows, err
}
