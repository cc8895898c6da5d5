package handler

import (
	"net/http"
	"time"

	"github.com/RigelNana/arktutor/gateway/middleware"
	"github.com/RigelNana/arktutor/services/auth-service/service"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	FirstName         string     `json:"first_name" binding:"required"`
	LastName          string     `json:"last_name" binding:"required"`
	Username          string     `json:"username" binding:"required"`
	Password          string     `json:"password" binding:"required"`
	UserType          string     `json:"user_type" binding:"required"`
	AssignedTeacherID *uuid.UUID `json:"assigned_teacher_id"`
}

type authenticateRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authenticateResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	UserType    usermodels.Role `json:"user_type"`
	UserID      uuid.UUID       `json:"user_id"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Register 创建学生或教师账号
// POST /api/v1/users
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	principal, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Username:          req.Username,
		Password:          req.Password,
		Role:              req.UserType,
		AssignedTeacherID: req.AssignedTeacherID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usermodels.View(principal))
}

// Authenticate 用户名密码换取 bearer token
// POST /api/v1/authenticate
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, authenticateResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		UserType:    res.Role,
		UserID:      res.UserID,
		ExpiresAt:   res.ExpiresAt,
	})
}

// Me GET /api/v1/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, usermodels.View(p))
}

// ChangePassword PUT /api/v1/me/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), p.Account().ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
