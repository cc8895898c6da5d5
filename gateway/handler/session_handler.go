package handler

import (
	"net/http"

	"github.com/RigelNana/arktutor/gateway/middleware"
	"github.com/RigelNana/arktutor/services/study-service/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessions service.SessionService
}

func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type saveSessionRequest struct {
	StudentID      uuid.UUID `json:"student_id" binding:"required"`
	Date           string    `json:"date"`
	LengthMinutes  int       `json:"length_minutes"`
	ReactionsTotal int       `json:"reactions_total"`
}

type listSessionsQuery struct {
	StudentID   string `form:"student_id"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	MinDuration *int   `form:"min_duration"`
	MaxDuration *int   `form:"max_duration"`
}

// SaveSession 学生记录自己的学习时长
// POST /api/v1/sessions
func (h *SessionHandler) SaveSession(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only students can access this endpoint"})
		return
	}
	var req saveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseTime("date", req.Date)
	if err != nil {
		writeError(c, err)
		return
	}

	session, err := h.sessions.SaveSession(c.Request.Context(), student, service.SessionInput{
		StudentID:      req.StudentID,
		Date:           date,
		LengthMinutes:  req.LengthMinutes,
		ReactionsTotal: req.ReactionsTotal,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ListSessions 教师查看名下学生的学习记录
// GET /api/v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only teachers can access this endpoint"})
		return
	}
	var q listSessionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	studentID, err := parseUUID("student_id", q.StudentID)
	if err != nil {
		writeError(c, err)
		return
	}
	start, err := parseTime("start_date", q.StartDate)
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := parseTime("end_date", q.EndDate)
	if err != nil {
		writeError(c, err)
		return
	}

	sessions, err := h.sessions.ListSessions(c.Request.Context(), teacher, service.SessionQuery{
		StudentID:   studentID,
		StartDate:   start,
		EndDate:     end,
		MinDuration: q.MinDuration,
		MaxDuration: q.MaxDuration,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}
