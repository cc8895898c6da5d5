package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/RigelNana/arktutor/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError 将服务层错误映射为 HTTP 状态码，内部错误不暴露原因
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusForKind(apperr.KindOf(err)), gin.H{"error": apperr.PublicMessage(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// parseTime accepts RFC 3339 timestamps and plain dates (taken as UTC midnight).
func parseTime(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperr.Validation("%s must be a date (YYYY-MM-DD) or an RFC 3339 timestamp", field)
	}
	return &t, nil
}

func parseUUID(field, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be a UUID", field)
	}
	return &id, nil
}
