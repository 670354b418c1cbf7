package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay-demo/backend/internal/models"
	"chat-relay-demo/backend/pkg/config"
	"chat-relay-demo/backend/pkg/di"
	"chat-relay-demo/backend/pkg/logger"
	"chat-relay-demo/backend/pkg/observability"
	"chat-relay-demo/backend/pkg/router"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	appLog := logger.New(logConfig)
	logger.SetGlobal(appLog)

	appLog.Info("Starting chat relay", "env", cfg.Server.Env)

	shutdownTracing, err := observability.SetupTracing("chat-relay")
	if err != nil {
		appLog.LogError(err, "Failed to initialize tracing")
		os.Exit(1)
	}
	if _, err := observability.SetupMetrics(); err != nil {
		appLog.LogError(err, "Failed to initialize metrics")
		os.Exit(1)
	}

	db, err := config.NewDB()
	if err != nil {
		appLog.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.Message{}, &models.APIKey{}); err != nil {
		appLog.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	container := di.New(db, cfg, appLog)

	r := router.New(container)
	r.SetupRoutes()

	// No Read/WriteTimeout here: the realtime endpoint holds connections
	// open far longer than any request deadline.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r.Engine,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	go func() {
		appLog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLog.LogError(err, "Server forced to shutdown")
	}

	if err := shutdownTracing(ctx); err != nil {
		appLog.LogError(err, "Failed to flush traces")
	}

	if err := container.Cache.Close(); err != nil {
		appLog.LogError(err, "Failed to close cache connection")
	}

	appLog.Info("Server exited gracefully")
}
