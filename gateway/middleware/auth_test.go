package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RigelNana/arktutor/pkg/apperr"
	"github.com/RigelNana/arktutor/pkg/database/dbtest"
	"github.com/RigelNana/arktutor/services/auth-service/guard"
	"github.com/RigelNana/arktutor/services/auth-service/service"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"
	userservice "github.com/RigelNana/arktutor/services/user-service/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens struct{}

// VerifyToken accepts "tok-<subject>" and rejects anything else.
func (stubTokens) VerifyToken(_ context.Context, token string) (*service.TokenIdentity, error) {
	subject, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return nil, apperr.Unauthorized(service.MsgInvalidToken)
	}
	return &service.TokenIdentity{SubjectID: subject}, nil
}

// stubIdentities knows one student, one teacher, a teacher without a
// teacher record and a subject whose lookup fails.
type stubIdentities struct {
	student, teacher, orphan, broken uuid.UUID
}

func (s *stubIdentities) ResolveUser(_ context.Context, subjectID string) (*usermodels.User, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, apperr.NotFound(userservice.MsgUserNotFound)
	}
	switch id {
	case s.student:
		return &usermodels.User{Base: usermodels.Base{ID: id}, FirstName: "Alice", Role: usermodels.RoleStudent}, nil
	case s.teacher, s.orphan:
		return &usermodels.User{Base: usermodels.Base{ID: id}, FirstName: "Tom", Role: usermodels.RoleTeacher}, nil
	case s.broken:
		return nil, apperr.Internal(errors.New("connection reset"), "get user")
	}
	return nil, apperr.NotFound(userservice.MsgUserNotFound)
}

func (s *stubIdentities) ResolveAsStudent(_ context.Context, u *usermodels.User) (*usermodels.Student, error) {
	if u.Role != usermodels.RoleStudent {
		return nil, apperr.Forbidden(userservice.MsgStudentsOnly)
	}
	return &usermodels.Student{User: *u, Profile: usermodels.StudentProfile{ID: u.ID}}, nil
}

func (s *stubIdentities) ResolveAsTeacher(_ context.Context, u *usermodels.User) (*usermodels.Teacher, error) {
	if u.Role != usermodels.RoleTeacher {
		return nil, apperr.Forbidden(userservice.MsgTeachersOnly)
	}
	if u.ID == s.orphan {
		return nil, apperr.NotFound(userservice.MsgTeacherNotFound)
	}
	return &usermodels.Teacher{User: *u, Profile: usermodels.TeacherProfile{ID: u.ID}}, nil
}

func (s *stubIdentities) Resolve(ctx context.Context, u *usermodels.User) (usermodels.Principal, error) {
	if u.Role == usermodels.RoleStudent {
		return s.ResolveAsStudent(ctx, u)
	}
	return s.ResolveAsTeacher(ctx, u)
}

func (s *stubIdentities) GetStudent(context.Context, uuid.UUID) (*usermodels.Student, error) {
	return nil, apperr.NotFound("Student not found")
}

func (s *stubIdentities) GetTeacher(context.Context, uuid.UUID) (*usermodels.Teacher, error) {
	return nil, apperr.NotFound("Teacher not found")
}

func TestAuthGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ids := &stubIdentities{student: uuid.New(), teacher: uuid.New(), orphan: uuid.New(), broken: uuid.New()}
	a := NewAuthGuard(guard.New(stubTokens{}, ids, dbtest.QuietLogger()))

	r := gin.New()
	r.GET("/any", a.RequireAuth(), func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		require.True(t, ok)
		c.String(http.StatusOK, p.Account().FirstName)
	})
	r.GET("/student", a.RequireStudent(), func(c *gin.Context) {
		s, ok := CurrentStudent(c)
		require.True(t, ok)
		_, isTeacher := CurrentTeacher(c)
		assert.False(t, isTeacher)
		c.String(http.StatusOK, s.User.FirstName)
	})
	r.GET("/teacher", a.RequireTeacher(), func(c *gin.Context) {
		tc, ok := CurrentTeacher(c)
		require.True(t, ok)
		c.String(http.StatusOK, tc.User.FirstName)
	})

	tests := []struct {
		name          string
		path          string
		header        string
		wantStatus    int
		wantChallenge bool
		wantBody      string
	}{
		{"no header", "/any", "", http.StatusUnauthorized, false, `{"error":"Not authenticated"}`},
		{"wrong scheme", "/any", "Basic abc", http.StatusUnauthorized, false, `{"error":"Not authenticated"}`},
		{"bad token", "/any", "Bearer junk", http.StatusUnauthorized, true, `{"error":"Invalid or expired token"}`},
		{"unknown subject", "/any", "Bearer tok-" + uuid.NewString(), http.StatusUnauthorized, true, `{"error":"User not found"}`},
		{"student on any", "/any", "Bearer tok-" + ids.student.String(), http.StatusOK, false, "Alice"},
		{"student on student", "/student", "bearer tok-" + ids.student.String(), http.StatusOK, false, "Alice"},
		{"student on teacher", "/teacher", "Bearer tok-" + ids.student.String(), http.StatusForbidden, false, `{"error":"Only teachers can access this endpoint"}`},
		{"teacher on student", "/student", "Bearer tok-" + ids.teacher.String(), http.StatusForbidden, false, `{"error":"Only students can access this endpoint"}`},
		{"teacher on teacher", "/teacher", "Bearer tok-" + ids.teacher.String(), http.StatusOK, false, "Tom"},
		{"teacher without record", "/teacher", "Bearer tok-" + ids.orphan.String(), http.StatusNotFound, false, `{"error":"Teacher record not found"}`},
		{"store failure", "/any", "Bearer tok-" + ids.broken.String(), http.StatusInternalServerError, false, `{"error":"internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			if tt.wantChallenge {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			} else {
				assert.Empty(t, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
