package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RigelNana/arktutor/pkg/apperr"
	"github.com/RigelNana/arktutor/pkg/database"
	"github.com/RigelNana/arktutor/pkg/events"
	"github.com/RigelNana/arktutor/pkg/metrics"
	"github.com/RigelNana/arktutor/services/auth-service/models"
	"github.com/RigelNana/arktutor/services/auth-service/repository"
	"github.com/RigelNana/arktutor/services/auth-service/utils"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"
	userrepo "github.com/RigelNana/arktutor/services/user-service/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgInvalidToken       = "Invalid or expired token"
	MsgUsernameTaken      = "Username already exists"
	MsgUserNotFound       = "User not found"
	MsgWrongPassword      = "Current password is incorrect"

	TokenTypeBearer = "bearer"

	maxNameLen        = 50
	maxUsernameLen    = 150
	minPasswordLength = 8
)

type RegisterInput struct {
	FirstName         string
	LastName          string
	Username          string
	Password          string
	Role              string
	AssignedTeacherID *uuid.UUID
}

type AuthResult struct {
	AccessToken string
	TokenType   string
	Role        usermodels.Role
	UserID      uuid.UUID
	ExpiresAt   time.Time
}

// TokenIdentity is what a verified token says about its bearer.
type TokenIdentity struct {
	SubjectID string
	Role      usermodels.Role
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (usermodels.Principal, error)
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
	VerifyToken(ctx context.Context, token string) (*TokenIdentity, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

type AuthServiceImpl struct {
	db        *gorm.DB
	creds     repository.AuthRepository
	users     userrepo.UserRepository
	hasher    utils.PasswordHasher
	tokens    *utils.TokenManager
	publisher events.Publisher
	logger    *logrus.Logger
	now       func() time.Time
}

type Option func(*AuthServiceImpl)

// WithClock replaces the wall clock used for token issuance and checks.
func WithClock(now func() time.Time) Option {
	return func(s *AuthServiceImpl) { s.now = now }
}

func NewAuthService(
	db *gorm.DB,
	creds repository.AuthRepository,
	users userrepo.UserRepository,
	hasher utils.PasswordHasher,
	tokens *utils.TokenManager,
	publisher events.Publisher,
	logger *logrus.Logger,
	opts ...Option,
) AuthService {
	s := &AuthServiceImpl{
		db:        db,
		creds:     creds,
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the user, its role record and its credential in one
// transaction. Nothing is written when any step fails.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (usermodels.Principal, error) {
	role, err := validateRegistration(in)
	if err != nil {
		metrics.Registrations.WithLabelValues(string(role), "invalid").Inc()
		return nil, err
	}

	// 事务外完成哈希，避免长时间占用连接
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		metrics.Registrations.WithLabelValues(string(role), "invalid").Inc()
		return nil, err
	}

	var principal usermodels.Principal
	err = database.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		creds := s.creds.WithTx(tx)
		users := s.users.WithTx(tx)

		taken, err := creds.UsernameExists(ctx, in.Username)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(MsgUsernameTaken)
		}

		if in.AssignedTeacherID != nil {
			if _, err := users.GetTeacherProfile(ctx, *in.AssignedTeacherID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("Assigned teacher not found")
				}
				return err
			}
		}

		user := &usermodels.User{
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Role:      role,
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}

		switch role {
		case usermodels.RoleStudent:
			profile := usermodels.StudentProfile{ID: user.ID, AssignedTeacherID: in.AssignedTeacherID}
			if err := users.CreateStudentProfile(ctx, &profile); err != nil {
				return err
			}
			principal = &usermodels.Student{User: *user, Profile: profile}
		case usermodels.RoleTeacher:
			profile := usermodels.TeacherProfile{ID: user.ID}
			if err := users.CreateTeacherProfile(ctx, &profile); err != nil {
				return err
			}
			principal = &usermodels.Teacher{User: *user, Profile: profile}
		default:
			return apperr.Validation("Unsupported user type")
		}

		return creds.Create(ctx, &models.Credential{
			UserID:       user.ID,
			Username:     in.Username,
			PasswordHash: hash,
		})
	})
	if err != nil {
		err = s.registrationError(err, in.Username)
		metrics.Registrations.WithLabelValues(string(role), strings.ToLower(string(apperr.KindOf(err)))).Inc()
		return nil, err
	}

	account := principal.Account()
	metrics.Registrations.WithLabelValues(string(role), "success").Inc()
	s.logger.WithFields(logrus.Fields{
		"user_id":   account.ID,
		"user_type": role,
		"username":  in.Username,
	}).Info("user registered")
	events.PublishBestEffort(ctx, s.publisher, s.logger, events.Event{
		Type: events.TypeUserRegistered,
		Key:  account.ID.String(),
		Payload: map[string]any{
			"user_id":   account.ID,
			"user_type": role,
			"username":  in.Username,
		},
		OccurredAt: s.now().UTC(),
	})
	return principal, nil
}

// registrationError folds the check-then-insert race into the same Conflict
// the pre-check reports.
func (s *AuthServiceImpl) registrationError(err error, username string) error {
	switch {
	case apperr.Coded(err):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		s.logger.WithField("username", username).Info("registration lost a uniqueness race")
		return apperr.Conflict(MsgUsernameTaken)
	default:
		s.logger.WithError(err).WithField("username", username).Error("registration failed")
		return apperr.Internal(err, "register user")
	}
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	cred, err := s.creds.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.SimulateVerify(password)
			metrics.AuthAttempts.WithLabelValues("unknown_user").Inc()
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		s.logger.WithError(err).Error("load credential failed")
		return nil, apperr.Internal(err, "get credential")
	}
	if !s.hasher.Verify(password, cred.PasswordHash) {
		metrics.AuthAttempts.WithLabelValues("bad_password").Inc()
		s.logger.WithField("username", username).Info("authentication rejected")
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	user, err := s.users.GetByID(ctx, cred.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithField("user_id", cred.UserID).Error("credential without user")
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, apperr.Internal(err, "get user")
	}
	role, ok := usermodels.ParseRole(string(user.Role))
	if !ok {
		metrics.AuthAttempts.WithLabelValues("no_role").Inc()
		return nil, apperr.Forbidden("Account has no role")
	}

	token, expiresAt, err := s.tokens.Issue(user.ID.String(), string(role), s.now())
	if err != nil {
		return nil, apperr.Internal(err, "issue token")
	}
	if s.hasher.NeedsRehash(cred.PasswordHash) {
		s.upgradeHash(ctx, cred, password)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &AuthResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		Role:        role,
		UserID:      user.ID,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *AuthServiceImpl) VerifyToken(ctx context.Context, token string) (*TokenIdentity, error) {
	claims, err := s.tokens.Verify(token, s.now())
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidToken)
	}
	role, ok := usermodels.ParseRole(claims.Role)
	if !ok {
		return nil, apperr.Unauthorized(MsgInvalidToken)
	}
	return &TokenIdentity{
		SubjectID: claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	cred, err := s.creds.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(MsgUserNotFound)
		}
		return apperr.Internal(err, "get credential")
	}
	if !s.hasher.Verify(current, cred.PasswordHash) {
		return apperr.Unauthorized(MsgWrongPassword)
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := s.hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.creds.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return apperr.Internal(err, "update password hash")
	}
	s.logger.WithField("user_id", userID).Info("password changed")
	return nil
}

func (s *AuthServiceImpl) upgradeHash(ctx context.Context, cred *models.Credential, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.creds.UpdatePasswordHash(ctx, cred.UserID, hash)
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", cred.UserID).Warn("password rehash failed")
	}
}

func (s *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return "", apperr.Validation("password is too long")
		}
		return "", apperr.Internal(err, "hash password")
	}
	return hash, nil
}

func validateRegistration(in RegisterInput) (usermodels.Role, error) {
	role, ok := usermodels.ParseRole(in.Role)
	if !ok {
		return usermodels.RoleUndefined, apperr.Validation("Unsupported user type")
	}
	if err := validateName("first_name", in.FirstName); err != nil {
		return role, err
	}
	if err := validateName("last_name", in.LastName); err != nil {
		return role, err
	}
	switch {
	case in.Username == "":
		return role, apperr.Validation("username is required")
	case strings.TrimSpace(in.Username) != in.Username:
		return role, apperr.Validation("username must not start or end with whitespace")
	case utf8.RuneCountInString(in.Username) > maxUsernameLen:
		return role, apperr.Validation("username must be at most %d characters", maxUsernameLen)
	}
	if err := validatePassword(in.Password); err != nil {
		return role, err
	}
	if in.AssignedTeacherID != nil && role != usermodels.RoleStudent {
		return role, apperr.Validation("assigned_teacher_id is only allowed for students")
	}
	return role, nil
}

func validateName(field, value string) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return apperr.Validation("%s is required", field)
	}
	if utf8.RuneCountInString(v) > maxNameLen {
		return apperr.Validation("%s must be at most %d characters", field, maxNameLen)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	return nil
}
