package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
		{name: "validation", err: Validation("bad %s", "input"), want: KindValidation},
		{name: "conflict", err: Conflict("Username already exists"), want: KindConflict},
		{name: "unauthorized", err: Unauthorized("Invalid or expired token"), want: KindUnauthorized},
		{name: "forbidden", err: Forbidden("nope"), want: KindForbidden},
		{name: "not found", err: NotFound("User not found"), want: KindNotFound},
		{name: "upstream", err: Upstream(errors.New("timeout"), "chat failed"), want: KindUpstream},
		{name: "internal", err: Internal(errors.New("disk"), "insert user"), want: KindInternal},
		{name: "wrapped by fmt", err: fmt.Errorf("handler: %w", NotFound("Student not found")), want: KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Username already exists", PublicMessage(Conflict("Username already exists")))
	assert.Equal(t, "internal server error", PublicMessage(Internal(errors.New("pq: connection refused"), "query")))
	assert.Equal(t, "upstream service unavailable", PublicMessage(Upstream(errors.New("503"), "chat")))

	// runtime messages go through a constant format so a stray % is kept verbatim
	msg := "Student 100% not found"
	assert.Equal(t, msg, PublicMessage(NotFound("%s", msg)))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause, "insert credential")
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindInternal))
}
