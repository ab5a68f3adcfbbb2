package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duetlabs/golang_services/internal/notification_pipeline/app"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/moderation"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/provider"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/repository/postgres"
	"github.com/duetlabs/golang_services/internal/platform/config"
	"github.com/duetlabs/golang_services/internal/platform/database"
	"github.com/duetlabs/golang_services/internal/platform/logger"
	"github.com/duetlabs/golang_services/internal/platform/messagebroker"
)

const natsQueueGroup = "notification_pipeline_workers"

func main() {
	cfg, err := config.Load("./configs", "config.defaults")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Notification Pipeline Service starting...", "log_level", cfg.LogLevel)

	dbPool, err := database.NewDBPool(context.Background(), cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Successfully connected to PostgreSQL database")

	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, "notification-pipeline-service", appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	appLogger.Info("Successfully connected to NATS")

	memberRepo := postgres.NewPgMemberRepository(dbPool, appLogger)
	chatRepo := postgres.NewPgChatRepository(dbPool, appLogger)
	bannedWordRepo := postgres.NewPgBannedWordRepository(dbPool, appLogger)

	pushProvider := provider.NewFCMProvider(appLogger, cfg.FCMEndpoint, cfg.FCMAuthToken, nil)
	classifier := moderation.NewClassifier(appLogger)
	dispatcher := app.NewDispatcher(pushProvider, memberRepo, appLogger)

	pipeline := app.NewPipelineService(memberRepo, chatRepo, bannedWordRepo, classifier, dispatcher, natsClient, appLogger)

	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	if err := pipeline.StartConsuming(appCtx, natsQueueGroup); err != nil {
		appLogger.Error("Failed to start NATS consumers", "error", err)
		os.Exit(1)
	}
	appLogger.Info("NATS consumers started", "queue_group", natsQueueGroup)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.PipelineMetricsPort),
		Handler: metricsMux,
	}
	go func() {
		appLogger.Info("Metrics HTTP server starting", "address", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics HTTP server ListenAndServe error", "error", err)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quitChan
	appLogger.Info("Shutdown signal received", "signal", receivedSignal.String())

	cancelAppCtx()

	appLogger.Info("Attempting graceful shutdown of Notification Pipeline Service...")
	pipeline.StopConsuming()
	if err := metricsServer.Shutdown(context.Background()); err != nil {
		appLogger.Error("Metrics HTTP server graceful shutdown failed", "error", err)
	}
	appLogger.Info("Notification Pipeline Service shut down successfully.")
}
