package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mgmcet/admission-portal/internal/api"
	"github.com/mgmcet/admission-portal/internal/cleanup"
	"github.com/mgmcet/admission-portal/internal/config"
	"github.com/mgmcet/admission-portal/internal/objectstore"
	"github.com/mgmcet/admission-portal/internal/pdf"
	"github.com/mgmcet/admission-portal/internal/storage"
	"github.com/mgmcet/admission-portal/internal/submit"
	"github.com/mgmcet/admission-portal/internal/templates"
	"github.com/mgmcet/admission-portal/internal/validate"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Local development convenience; missing .env is fine
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting admission-portal",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Initialize object storage for uploaded images
	uploader, err := objectstore.NewS3Store(initCtx, objectstore.Config{
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		Endpoint:      cfg.Storage.Endpoint,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		slog.Error("failed to create object store", "error", err)
		os.Exit(1)
	}

	// Load the form template, falling back to the built-in wording
	tmpl, err := templates.LoadFromFile(cfg.PDF.TemplatePath)
	if err != nil {
		slog.Warn("failed to load form template, using defaults", "path", cfg.PDF.TemplatePath, "error", err)
		tmpl = templates.Default()
	}

	// Redis backs the submission rate limiter; the limiter fails open if
	// Redis is down, so startup does not depend on it
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(initCtx).Err(); err != nil {
		slog.Warn("redis unavailable, submissions will not be rate limited", "error", err)
	}

	schema := validate.New(cfg.Uploads.MaxBytes)
	coordinator := submit.NewCoordinator(repo, uploader, schema)
	renderer := pdf.NewRenderer(tmpl, cfg.PDF.SiteAddress)
	limiter := api.NewRateLimiter(redisClient, cfg.RateLimit)

	// Initialize spool cleanup worker
	cleaner := cleanup.NewCleaner(cfg.PDF.SpoolDir, cfg.Cleanup.Interval, cfg.Cleanup.MaxAge)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start cleanup worker
	cleaner.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, coordinator, repo, renderer, limiter,
		cfg.Uploads.MaxBytes, cfg.PDF.SpoolDir)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := redisClient.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}

	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("admission-portal stopped")
}
