package service

import (
	"context"
	"errors"

	"github.com/RigelNana/arktutor/pkg/apperr"
	"github.com/RigelNana/arktutor/services/user-service/models"
	"github.com/RigelNana/arktutor/services/user-service/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	MsgUserNotFound    = "User not found"
	MsgStudentsOnly    = "Only students can access this endpoint"
	MsgTeachersOnly    = "Only teachers can access this endpoint"
	MsgStudentNotFound = "Student record not found"
	MsgTeacherNotFound = "Teacher record not found"
)

// UserService resolves token subjects into accounts. It never writes.
type UserService interface {
	ResolveUser(ctx context.Context, subjectID string) (*models.User, error)
	ResolveAsStudent(ctx context.Context, user *models.User) (*models.Student, error)
	ResolveAsTeacher(ctx context.Context, user *models.User) (*models.Teacher, error)
	Resolve(ctx context.Context, user *models.User) (models.Principal, error)
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	GetTeacher(ctx context.Context, id uuid.UUID) (*models.Teacher, error)
}

type UserServiceImpl struct {
	repo   repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(r repository.UserRepository, logger *logrus.Logger) UserService {
	return &UserServiceImpl{repo: r, logger: logger}
}

func (s *UserServiceImpl) ResolveUser(ctx context.Context, subjectID string) (*models.User, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, MsgUserNotFound, "get user")
	}
	return user, nil
}

func (s *UserServiceImpl) ResolveAsStudent(ctx context.Context, user *models.User) (*models.Student, error) {
	if user.Role != models.RoleStudent {
		return nil, apperr.Forbidden(MsgStudentsOnly)
	}
	profile, err := s.repo.GetStudentProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithField("user_id", user.ID).Error("student role without student record")
		}
		return nil, s.lookupError(err, MsgStudentNotFound, "get student profile")
	}
	return &models.Student{User: *user, Profile: *profile}, nil
}

func (s *UserServiceImpl) ResolveAsTeacher(ctx context.Context, user *models.User) (*models.Teacher, error) {
	if user.Role != models.RoleTeacher {
		return nil, apperr.Forbidden(MsgTeachersOnly)
	}
	profile, err := s.repo.GetTeacherProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithField("user_id", user.ID).Error("teacher role without teacher record")
		}
		return nil, s.lookupError(err, MsgTeacherNotFound, "get teacher profile")
	}
	return &models.Teacher{User: *user, Profile: *profile}, nil
}

// Resolve returns the specialisation matching the user's role.
func (s *UserServiceImpl) Resolve(ctx context.Context, user *models.User) (models.Principal, error) {
	switch user.Role {
	case models.RoleStudent:
		return s.ResolveAsStudent(ctx, user)
	case models.RoleTeacher:
		return s.ResolveAsTeacher(ctx, user)
	case models.RoleUndefined:
		return nil, apperr.Forbidden("Account has no role")
	default:
		return nil, apperr.Forbidden("Account has an unknown role")
	}
}

// GetStudent looks up a student by id for operations that target one.
func (s *UserServiceImpl) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Student not found", "get user")
	}
	if user.Role != models.RoleStudent {
		return nil, apperr.NotFound("Student not found")
	}
	profile, err := s.repo.GetStudentProfile(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Student not found", "get student profile")
	}
	return &models.Student{User: *user, Profile: *profile}, nil
}

func (s *UserServiceImpl) GetTeacher(ctx context.Context, id uuid.UUID) (*models.Teacher, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Teacher not found", "get user")
	}
	if user.Role != models.RoleTeacher {
		return nil, apperr.NotFound("Teacher not found")
	}
	profile, err := s.repo.GetTeacherProfile(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Teacher not found", "get teacher profile")
	}
	return &models.Teacher{User: *user, Profile: *profile}, nil
}

func (s *UserServiceImpl) lookupError(err error, notFoundMsg, operation string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", notFoundMsg)
	}
	s.logger.WithError(err).WithField("operation", operation).Error("user lookup failed")
	return apperr.Internal(err, operation)
}
