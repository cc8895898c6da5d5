// Package guard decides, per request, whether a bearer token may reach an
// operation and which account it belongs to. It knows nothing about HTTP;
// transports map a Decision's Outcome to their own status codes.
package guard

import (
	"context"
	"strings"

	"github.com/RigelNana/arktutor/pkg/apperr"
	"github.com/RigelNana/arktutor/pkg/metrics"
	"github.com/RigelNana/arktutor/services/auth-service/service"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"
	userservice "github.com/RigelNana/arktutor/services/user-service/service"

	"github.com/sirupsen/logrus"
)

type Requirement int

const (
	AnyRole Requirement = iota
	StudentOnly
	TeacherOnly
)

type Outcome int

const (
	Unauthenticated Outcome = iota
	TokenInvalid
	UserMissing
	RoleMismatch
	SpecializationMissing
	Faulted
	Authorized
)

func (o Outcome) String() string {
	switch o {
	case Unauthenticated:
		return "unauthenticated"
	case TokenInvalid:
		return "token_invalid"
	case UserMissing:
		return "user_missing"
	case RoleMismatch:
		return "role_mismatch"
	case SpecializationMissing:
		return "specialization_missing"
	case Faulted:
		return "faulted"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Decision is the result of one Check. Err is set for every outcome except
// Authorized; Principal only for Authorized.
type Decision struct {
	Outcome   Outcome
	Principal usermodels.Principal
	Err       error
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*service.TokenIdentity, error)
}

// Guard holds no per-request state; every Check starts from the raw header.
type Guard struct {
	tokens     TokenVerifier
	identities userservice.UserService
	logger     *logrus.Logger
}

func New(tokens TokenVerifier, identities userservice.UserService, logger *logrus.Logger) *Guard {
	return &Guard{tokens: tokens, identities: identities, logger: logger}
}

func (g *Guard) Check(ctx context.Context, authorization string, req Requirement) Decision {
	d := g.check(ctx, authorization, req)
	metrics.GuardDecisions.WithLabelValues(d.Outcome.String()).Inc()
	if d.Outcome == Faulted {
		g.logger.WithError(d.Err).Error("access guard could not resolve identity")
	}
	return d
}

func (g *Guard) check(ctx context.Context, authorization string, req Requirement) Decision {
	token, ok := BearerToken(authorization)
	if !ok {
		return Decision{Outcome: Unauthenticated, Err: apperr.Unauthorized("Not authenticated")}
	}

	ident, err := g.tokens.VerifyToken(ctx, token)
	if err != nil {
		return Decision{Outcome: TokenInvalid, Err: apperr.Unauthorized(service.MsgInvalidToken)}
	}

	user, err := g.identities.ResolveUser(ctx, ident.SubjectID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Decision{Outcome: UserMissing, Err: apperr.Unauthorized(userservice.MsgUserNotFound)}
		}
		return Decision{Outcome: Faulted, Err: err}
	}

	var principal usermodels.Principal
	switch req {
	case StudentOnly:
		student, err := g.identities.ResolveAsStudent(ctx, user)
		if err != nil {
			return rejectRole(err)
		}
		principal = student
	case TeacherOnly:
		teacher, err := g.identities.ResolveAsTeacher(ctx, user)
		if err != nil {
			return rejectRole(err)
		}
		principal = teacher
	default:
		p, err := g.identities.Resolve(ctx, user)
		if err != nil {
			return rejectRole(err)
		}
		principal = p
	}
	return Decision{Outcome: Authorized, Principal: principal}
}

func rejectRole(err error) Decision {
	switch apperr.KindOf(err) {
	case apperr.KindForbidden:
		return Decision{Outcome: RoleMismatch, Err: err}
	case apperr.KindNotFound:
		return Decision{Outcome: SpecializationMissing, Err: err}
	default:
		return Decision{Outcome: Faulted, Err: err}
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
