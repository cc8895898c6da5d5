package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/RigelNana/arktutor/pkg/apperr"
	"github.com/RigelNana/arktutor/pkg/events"
	"github.com/RigelNana/arktutor/services/study-service/models"
	"github.com/RigelNana/arktutor/services/study-service/repository"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"
	userservice "github.com/RigelNana/arktutor/services/user-service/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type GradeInput struct {
	StudentID uuid.UUID
	Date      time.Time
	Score     float64
	Comments  *string
}

type GradeQuery struct {
	StudentID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	MinScore  *float64
	MaxScore  *float64
}

type GradeService interface {
	CreateGrade(ctx context.Context, teacher *usermodels.Teacher, in GradeInput) (*models.Grade, error)
	ListGrades(ctx context.Context, teacher *usermodels.Teacher, q GradeQuery) ([]*models.Grade, error)
}

type GradeServiceImpl struct {
	repo      repository.GradeRepository
	students  userservice.UserService
	publisher events.Publisher
	logger    *logrus.Logger
}

func NewGradeService(repo repository.GradeRepository, students userservice.UserService, publisher events.Publisher, logger *logrus.Logger) GradeService {
	return &GradeServiceImpl{repo: repo, students: students, publisher: publisher, logger: logger}
}

func (s *GradeServiceImpl) CreateGrade(ctx context.Context, teacher *usermodels.Teacher, in GradeInput) (*models.Grade, error) {
	if err := validateScore("score", in.Score); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, apperr.Validation("date is required")
	}
	if in.Comments != nil && utf8.RuneCountInString(*in.Comments) > models.MaxCommentsLen {
		return nil, apperr.Validation("comments must be at most %d characters", models.MaxCommentsLen)
	}
	if _, err := s.students.GetStudent(ctx, in.StudentID); err != nil {
		return nil, err
	}

	grade := &models.Grade{
		Date:      in.Date.UTC(),
		Score:     in.Score,
		Comments:  in.Comments,
		StudentID: in.StudentID,
		TeacherID: teacher.User.ID,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		s.logger.WithError(err).Error("create grade failed")
		return nil, apperr.Internal(err, "create grade")
	}

	s.logger.WithFields(logrus.Fields{
		"grade_id":   grade.ID,
		"student_id": grade.StudentID,
		"teacher_id": grade.TeacherID,
	}).Info("grade recorded")
	events.PublishBestEffort(ctx, s.publisher, s.logger, events.Event{
		Type:    events.TypeGradeRecorded,
		Key:     grade.StudentID.String(),
		Payload: grade,
	})
	return grade, nil
}

func (s *GradeServiceImpl) ListGrades(ctx context.Context, teacher *usermodels.Teacher, q GradeQuery) ([]*models.Grade, error) {
	if err := validateRange(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}
	if q.MinScore != nil {
		if err := validateScore("min_score", *q.MinScore); err != nil {
			return nil, err
		}
	}
	if q.MaxScore != nil {
		if err := validateScore("max_score", *q.MaxScore); err != nil {
			return nil, err
		}
	}
	if q.MinScore != nil && q.MaxScore != nil && *q.MinScore > *q.MaxScore {
		return nil, apperr.Validation("min_score must not exceed max_score")
	}

	grades, err := s.repo.ListByFilter(ctx, models.GradeFilter{
		TeacherID: teacher.User.ID,
		StudentID: q.StudentID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		MinScore:  q.MinScore,
		MaxScore:  q.MaxScore,
	})
	if err != nil {
		s.logger.WithError(err).Error("list grades failed")
		return nil, apperr.Internal(err, "list grades")
	}
	return grades, nil
}

func validateScore(field string, v float64) error {
	if v < models.MinScore || v > models.MaxScore {
		return apperr.Validation("%s must be between %d and %d", field, models.MinScore, models.MaxScore)
	}
	return nil
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return apperr.Validation("start_date must not be after end_date")
	}
	return nil
}
