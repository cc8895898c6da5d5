package middleware

import (
	"net/http"

	"github.com/RigelNana/arktutor/pkg/apperr"
	"github.com/RigelNana/arktutor/services/auth-service/guard"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// AuthGuard adapts guard.Guard to gin: a rejected request is aborted with the
// matching status, an authorized one carries its principal in the context.
type AuthGuard struct {
	guard *guard.Guard
}

func NewAuthGuard(g *guard.Guard) *AuthGuard {
	return &AuthGuard{guard: g}
}

// RequireAuth 任意已登录角色
func (a *AuthGuard) RequireAuth() gin.HandlerFunc { return a.require(guard.AnyRole) }

func (a *AuthGuard) RequireStudent() gin.HandlerFunc { return a.require(guard.StudentOnly) }

func (a *AuthGuard) RequireTeacher() gin.HandlerFunc { return a.require(guard.TeacherOnly) }

func (a *AuthGuard) require(req guard.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := a.guard.Check(c.Request.Context(), c.GetHeader("Authorization"), req)
		if d.Outcome == guard.Authorized {
			c.Set(principalKey, d.Principal)
			c.Next()
			return
		}
		if d.Outcome == guard.TokenInvalid || d.Outcome == guard.UserMissing {
			c.Header("WWW-Authenticate", "Bearer")
		}
		c.AbortWithStatusJSON(statusFor(d.Outcome), gin.H{"error": apperr.PublicMessage(d.Err)})
	}
}

func statusFor(o guard.Outcome) int {
	switch o {
	case guard.Unauthenticated, guard.TokenInvalid, guard.UserMissing:
		return http.StatusUnauthorized
	case guard.RoleMismatch:
		return http.StatusForbidden
	case guard.SpecializationMissing:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// CurrentPrincipal returns the account stored by RequireAuth.
func CurrentPrincipal(c *gin.Context) (usermodels.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(usermodels.Principal)
	return p, ok
}

func CurrentStudent(c *gin.Context) (*usermodels.Student, bool) {
	p, ok := CurrentPrincipal(c)
	if !ok {
		return nil, false
	}
	s, ok := p.(*usermodels.Student)
	return s, ok
}

func CurrentTeacher(c *gin.Context) (*usermodels.Teacher, bool) {
	p, ok := CurrentPrincipal(c)
	if !ok {
		return nil, false
	}
	t, ok := p.(*usermodels.Teacher)
	return t, ok
}
