package service

import (
	"context"
	"time"

	"github.com/RigelNana/arktutor/pkg/apperr"
	"github.com/RigelNana/arktutor/pkg/events"
	"github.com/RigelNana/arktutor/services/study-service/models"
	"github.com/RigelNana/arktutor/services/study-service/repository"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const MsgOwnSessionsOnly = "Students can only save their own sessions"

type SessionInput struct {
	StudentID      uuid.UUID
	Date           *time.Time
	LengthMinutes  int
	ReactionsTotal int
}

type SessionQuery struct {
	StudentID   *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	MinDuration *int
	MaxDuration *int
}

type SessionService interface {
	SaveSession(ctx context.Context, student *usermodels.Student, in SessionInput) (*models.StudySession, error)
	ListSessions(ctx context.Context, teacher *usermodels.Teacher, q SessionQuery) ([]*models.SessionWithStudent, error)
}

type SessionServiceImpl struct {
	repo      repository.SessionRepository
	publisher events.Publisher
	logger    *logrus.Logger
	now       func() time.Time
}

func NewSessionService(repo repository.SessionRepository, publisher events.Publisher, logger *logrus.Logger, now func() time.Time) SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionServiceImpl{repo: repo, publisher: publisher, logger: logger, now: now}
}

func (s *SessionServiceImpl) SaveSession(ctx context.Context, student *usermodels.Student, in SessionInput) (*models.StudySession, error) {
	if in.StudentID != student.User.ID {
		return nil, apperr.Forbidden(MsgOwnSessionsOnly)
	}
	if in.LengthMinutes < 0 {
		return nil, apperr.Validation("length_minutes must not be negative")
	}
	if in.ReactionsTotal < 0 {
		return nil, apperr.Validation("reactions_total must not be negative")
	}
	date := s.now()
	if in.Date != nil {
		date = *in.Date
	}

	session := &models.StudySession{
		Date:           date.UTC(),
		StudentID:      student.User.ID,
		LengthMinutes:  in.LengthMinutes,
		ReactionsTotal: in.ReactionsTotal,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		s.logger.WithError(err).Error("save session failed")
		return nil, apperr.Internal(err, "save session")
	}

	events.PublishBestEffort(ctx, s.publisher, s.logger, events.Event{
		Type:    events.TypeSessionLogged,
		Key:     session.StudentID.String(),
		Payload: session,
	})
	return session, nil
}

func (s *SessionServiceImpl) ListSessions(ctx context.Context, teacher *usermodels.Teacher, q SessionQuery) ([]*models.SessionWithStudent, error) {
	if err := validateRange(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}
	if (q.MinDuration != nil && *q.MinDuration < 1) || (q.MaxDuration != nil && *q.MaxDuration < 1) {
		return nil, apperr.Validation("min_duration and max_duration must be at least 1")
	}
	if q.MinDuration != nil && q.MaxDuration != nil && *q.MinDuration > *q.MaxDuration {
		return nil, apperr.Validation("min_duration must not exceed max_duration")
	}

	rows, err := s.repo.ListForTeacher(ctx, models.SessionFilter{
		TeacherID:   teacher.User.ID,
		StudentID:   q.StudentID,
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		MinDuration: q.MinDuration,
		MaxDuration: q.MaxDuration,
	})
	if err != nil {
		s.logger.WithError(err).Error("list sessions failed")
		return nil, apperr.Internal(err, "list sessions")
	}
	return rows, nil
}
