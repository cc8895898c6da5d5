package service

import (
	"context"
	"strings"

	"github.com/RigelNana/arktutor/pkg/apperr"
	"github.com/RigelNana/arktutor/pkg/config"
	"github.com/RigelNana/arktutor/pkg/metrics"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Completer is the part of *openai.Client the relay uses.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type ChatService interface {
	Relay(ctx context.Context, student *usermodels.Student, prompt string) (string, error)
}

type ChatServiceImpl struct {
	client Completer
	model  string
	logger *logrus.Logger
}

// NewChatService builds an OpenAI client from cfg. Without an API key the
// service stays up but every relay fails as upstream unavailable.
func NewChatService(cfg config.OpenAIConfig, logger *logrus.Logger) ChatService {
	if cfg.APIKey == "" {
		logger.Warn("OpenAI API key not configured, chat relay disabled")
		return NewChatServiceWithClient(nil, cfg.Model, logger)
	}
	var client *openai.Client
	if cfg.BaseURL != "" {
		// 使用自定义baseURL创建客户端
		oc := openai.DefaultConfig(cfg.APIKey)
		oc.BaseURL = cfg.BaseURL
		client = openai.NewClientWithConfig(oc)
	} else {
		client = openai.NewClient(cfg.APIKey)
	}
	return NewChatServiceWithClient(client, cfg.Model, logger)
}

func NewChatServiceWithClient(client Completer, model string, logger *logrus.Logger) ChatService {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &ChatServiceImpl{client: client, model: model, logger: logger}
}

func (s *ChatServiceImpl) Relay(ctx context.Context, student *usermodels.Student, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.Validation("prompt is required")
	}
	if s.client == nil {
		metrics.ChatRelays.WithLabelValues("disabled").Inc()
		return "", apperr.Upstream(nil, "chat relay is not configured")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		metrics.ChatRelays.WithLabelValues("error").Inc()
		s.logger.WithError(err).WithField("student_id", student.User.ID).Error("chat completion failed")
		return "", apperr.Upstream(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		metrics.ChatRelays.WithLabelValues("empty").Inc()
		return "", apperr.Upstream(nil, "chat completion returned no choices")
	}

	metrics.ChatRelays.WithLabelValues("success").Inc()
	return resp.Choices[0].Message.Content, nil
}
