package handler

import (
	"net/http"

	"github.com/RigelNana/arktutor/gateway/middleware"
	"github.com/RigelNana/arktutor/services/study-service/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chat service.ChatService
}

func NewChatHandler(chat service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat 转发学生的问题给 LLM
// POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only students can access this endpoint"})
		return
	}
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	answer, err := h.chat.Relay(c.Request.Context(), student, req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": answer})
}
