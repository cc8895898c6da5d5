// Package apperr defines the error kinds shared by every service and the
// helpers that build and classify them.
package apperr

import (
	"errors"

	"github.com/samber/oops"
)

// Kind is the stable classification of an error as seen by callers.
type Kind string

const (
	CodeValidation   = "VALIDATION"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeUpstream     = "UPSTREAM"
	CodeInternal     = "INTERNAL"
)

const (
	KindValidation   Kind = CodeValidation
	KindConflict     Kind = CodeConflict
	KindUnauthorized Kind = CodeUnauthorized
	KindForbidden    Kind = CodeForbidden
	KindNotFound     Kind = CodeNotFound
	KindUpstream     Kind = CodeUpstream
	KindInternal     Kind = CodeInternal
)

var kinds = []Kind{
	KindValidation,
	KindConflict,
	KindUnauthorized,
	KindForbidden,
	KindNotFound,
	KindUpstream,
	KindInternal,
}

// KindOf returns the kind carried by err. Errors without a known code are
// internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindInternal
	}
	for _, k := range kinds {
		if oopsErr.Code() == string(k) {
			return k
		}
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

func Validation(format string, args ...any) error {
	return oops.Code(CodeValidation).Errorf(format, args...)
}

func Conflict(format string, args ...any) error {
	return oops.Code(CodeConflict).Errorf(format, args...)
}

func Unauthorized(format string, args ...any) error {
	return oops.Code(CodeUnauthorized).Errorf(format, args...)
}

func Forbidden(format string, args ...any) error {
	return oops.Code(CodeForbidden).Errorf(format, args...)
}

func NotFound(format string, args ...any) error {
	return oops.Code(CodeNotFound).Errorf(format, args...)
}

// Upstream wraps a failure of an external collaborator.
func Upstream(err error, format string, args ...any) error {
	if err == nil {
		return oops.Code(CodeUpstream).Errorf(format, args...)
	}
	return oops.Code(CodeUpstream).Wrapf(err, format, args...)
}

// Internal wraps an unexpected failure. The message is never shown to clients.
func Internal(err error, operation string) error {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return oops.Code(CodeInternal).With("operation", operation).Wrap(err)
}

// PublicMessage returns the text that may be shown to a client for err.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case KindInternal:
		return "internal server error"
	case KindUpstream:
		return "upstream service unavailable"
	default:
		return err.Error()
	}
}

// Coded reports whether err already carries a code and can be returned as is.
func Coded(err error) bool {
	_, ok := oops.AsOops(err)
	return ok
}
