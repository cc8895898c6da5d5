package main

import (
	"context"

	"github.com/RigelNana/arktutor/gateway/handler"
	"github.com/RigelNana/arktutor/gateway/middleware"
	"github.com/RigelNana/arktutor/gateway/router"
	"github.com/RigelNana/arktutor/pkg/config"
	"github.com/RigelNana/arktutor/pkg/database"
	"github.com/RigelNana/arktutor/pkg/database/schema"
	"github.com/RigelNana/arktutor/pkg/events"
	"github.com/RigelNana/arktutor/pkg/metrics"
	"github.com/RigelNana/arktutor/services/auth-service/guard"
	authrepo "github.com/RigelNana/arktutor/services/auth-service/repository"
	authservice "github.com/RigelNana/arktutor/services/auth-service/service"
	"github.com/RigelNana/arktutor/services/auth-service/utils"
	studyrepo "github.com/RigelNana/arktutor/services/study-service/repository"
	studyservice "github.com/RigelNana/arktutor/services/study-service/service"
	userrepo "github.com/RigelNana/arktutor/services/user-service/repository"
	userservice "github.com/RigelNana/arktutor/services/user-service/service"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const serviceName = "arktutor"

type app struct {
	engine    *gin.Engine
	publisher events.Publisher
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithField("level", cfg.Level).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	return logger
}

// openDatabase connects, migrates and exposes pool statistics.
func openDatabase(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	if err := database.Migrate(db, schema.Models()...); err != nil {
		closeDatabase(db, logger)
		return nil, oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		closeDatabase(db, logger)
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	if err := metrics.RegisterDBStats(serviceName, sqlDB); err != nil {
		logger.WithError(err).Warn("database pool metrics unavailable")
	}
	return db, nil
}

func closeDatabase(db *gorm.DB, logger *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.WithError(err).Warn("close database")
	}
}

func newPublisher(cfg config.KafkaConfig, logger *logrus.Logger) events.Publisher {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, domain events disabled")
		return events.Nop{}
	}
	logger.WithFields(logrus.Fields{
		"brokers": brokers,
		"topic":   cfg.Topic,
		"timeout": cfg.PublishTimeout(),
	}).Info("publishing domain events to kafka")
	return events.NewKafkaPublisher(brokers, cfg.Topic, serviceName, cfg.PublishTimeout(), logger)
}

// buildApp wires repositories, services and handlers over db.
func buildApp(cfg *config.Config, logger *logrus.Logger, db *gorm.DB, publisher events.Publisher, chat studyservice.ChatService) (*app, error) {
	hasher, err := utils.NewPasswordHasher(utils.HasherConfig{
		Scheme:       cfg.Crypt.Scheme,
		PBKDF2Rounds: cfg.Crypt.PBKDF2Rounds,
		BcryptCost:   cfg.Crypt.BcryptCost,
	})
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "build password hasher").Wrap(err)
	}
	tokens, err := utils.NewTokenManager(utils.TokenConfig{
		Secret:    []byte(cfg.Auth.Secret),
		Algorithm: cfg.Auth.Algorithm,
		Lifetime:  cfg.Auth.TokenLifetime(),
		Issuer:    cfg.Auth.Issuer,
	})
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "build token manager").Wrap(err)
	}

	users := userrepo.NewUserRepository(db)
	creds := authrepo.NewAuthRepository(db)
	identities := userservice.NewUserService(users, logger)
	auth := authservice.NewAuthService(db, creds, users, hasher, tokens, publisher, logger)

	grades := studyservice.NewGradeService(studyrepo.NewGradeRepository(db), identities, publisher, logger)
	sessions := studyservice.NewSessionService(studyrepo.NewSessionRepository(db), publisher, logger, nil)
	if chat == nil {
		chat = studyservice.NewChatService(cfg.OpenAI, logger)
	}

	authGuard := middleware.NewAuthGuard(guard.New(auth, identities, logger))
	engine := router.Setup(router.Handlers{
		Auth:    handler.NewAuthHandler(auth),
		Grade:   handler.NewGradeHandler(grades),
		Session: handler.NewSessionHandler(sessions),
		Chat:    handler.NewChatHandler(chat),
		Health:  handler.NewHealthHandler(db, logger),
	}, authGuard, logger)

	return &app{engine: engine, publisher: publisher}, nil
}
