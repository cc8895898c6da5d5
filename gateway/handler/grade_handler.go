package handler

import (
	"net/http"

	"github.com/RigelNana/arktutor/gateway/middleware"
	"github.com/RigelNana/arktutor/services/study-service/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GradeHandler struct {
	grades service.GradeService
}

func NewGradeHandler(grades service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

type createGradeRequest struct {
	Date      string    `json:"date" binding:"required"`
	Score     *float64  `json:"score" binding:"required"`
	Comments  *string   `json:"comments"`
	StudentID uuid.UUID `json:"student_id" binding:"required"`
}

type listGradesQuery struct {
	StudentID string   `form:"student_id"`
	StartDate string   `form:"start_date"`
	EndDate   string   `form:"end_date"`
	MinScore  *float64 `form:"min_score"`
	MaxScore  *float64 `form:"max_score"`
}

// ListGrades 当前教师给出的成绩
// GET /api/v1/grades
func (h *GradeHandler) ListGrades(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only teachers can access this endpoint"})
		return
	}
	var q listGradesQuery
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

	grades, err := h.grades.ListGrades(c.Request.Context(), teacher, service.GradeQuery{
		StudentID: studentID,
		StartDate: start,
		EndDate:   end,
		MinScore:  q.MinScore,
		MaxScore:  q.MaxScore,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, grades)
}

// CreateGrade POST /api/v1/grades
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only teachers can access this endpoint"})
		return
	}
	var req createGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseTime("date", req.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	if date == nil {
		badRequest(c, "date is required")
		return
	}

	grade, err := h.grades.CreateGrade(c.Request.Context(), teacher, service.GradeInput{
		StudentID: req.StudentID,
		Date:      *date,
		Score:     *req.Score,
		Comments:  req.Comments,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, grade)
}
