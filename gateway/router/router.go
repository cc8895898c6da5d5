package router

import (
	"github.com/RigelNana/arktutor/gateway/docs"
	"github.com/RigelNana/arktutor/gateway/handler"
	"github.com/RigelNana/arktutor/gateway/middleware"
	ginMetrics "github.com/RigelNana/arktutor/pkg/metrics/gin"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Grade   *handler.GradeHandler
	Session *handler.SessionHandler
	Chat    *handler.ChatHandler
	Health  *handler.HealthHandler
}

func Setup(h Handlers, authGuard *middleware.AuthGuard, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(ginMetrics.PrometheusMiddleware("gateway"))

	r.GET("/health", h.Health.Health)
	docs.RegisterRoutes(r)

	api := r.Group("/api/v1")
	{
		api.POST("/users", h.Auth.Register)
		api.POST("/authenticate", h.Auth.Authenticate)
	}

	me := api.Group("/me", authGuard.RequireAuth())
	{
		me.GET("", h.Auth.Me)
		me.PUT("/password", h.Auth.ChangePassword)
	}

	teacher := api.Group("", authGuard.RequireTeacher())
	{
		teacher.GET("/grades", h.Grade.ListGrades)
		teacher.POST("/grades", h.Grade.CreateGrade)
		teacher.GET("/sessions", h.Session.ListSessions)
	}

	student := api.Group("", authGuard.RequireStudent())
	{
		student.POST("/sessions", h.Session.SaveSession)
		student.POST("/chat", h.Chat.Chat)
	}

	return r
}
