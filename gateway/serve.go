package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RigelNana/arktutor/pkg/config"
	"github.com/RigelNana/arktutor/pkg/metrics"
	grpcMetrics "github.com/RigelNana/arktutor/pkg/metrics/grpc"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate, then serve HTTP, gRPC health and metrics",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}
	logger := newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDatabase(db, logger)

	publisher := newPublisher(cfg.Kafka, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.WithError(err).Warn("close event publisher")
		}
	}()

	a, err := buildApp(cfg, logger, db, publisher, nil)
	if err != nil {
		return err
	}

	// 启动 Prometheus metrics 服务器
	metricsSrv := metrics.StartMetricsServer(cfg.Server.MetricsPort, func(err error) {
		logger.WithError(err).Error("metrics server stopped")
	})
	logger.Infof("Prometheus metrics server started on :%s", cfg.Server.MetricsPort)

	// 带监控的 gRPC 服务器，只提供健康检查
	grpcSrv := grpc.NewServer(grpcMetrics.ServerOptions(serviceName)...)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)
	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("port", cfg.Server.GRPCPort).Wrap(err)
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Infof("gRPC health server listening on %s", cfg.Server.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		logger.Infof("HTTP server listening on %s", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.WithError(serveErr).Error("server failed")
	}

	healthSrv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}
	grpcSrv.GracefulStop()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("metrics shutdown")
	}
	logger.Info("servers stopped")
	return serveErr
}
