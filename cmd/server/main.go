package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"leaddistributor/internal/api"
	"leaddistributor/internal/config"
	"leaddistributor/internal/distribute"
	"leaddistributor/internal/ingest"
	"leaddistributor/internal/logging"
	"leaddistributor/internal/repository"
	"leaddistributor/internal/services"
)

func main() {
	ctx := context.Background()

	logger := logging.NewLogger()
	defer logger.Sync()

	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		log.Fatalf("Configuration loading failed: %v", err)
	}
	logger.Info("Configuration loaded",
		"db_host", cfg.DB.Host,
		"strategy", cfg.Distribution.Strategy,
		"max_upload_bytes", cfg.Upload.MaxBytes,
	)

	logger.Info("Starting Lead Distributor Service")

	dbPool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer dbPool.Close()

	logger.Info("Database connected")

	// Repository layer
	taskStore := repository.NewPostgresTaskStore(dbPool)
	agentDir := repository.NewPostgresAgentDirectory(dbPool)

	// Pipeline and read-side services
	strategy, err := distribute.FromName(cfg.Distribution.Strategy)
	if err != nil {
		logger.Error("Invalid distribution strategy", "error", err)
		log.Fatalf("Invalid distribution strategy: %v", err)
	}
	pipeline := ingest.NewPipeline(taskStore, agentDir, strategy, logger)
	reportService := services.NewReportService(taskStore, agentDir)

	logger.Info("Service layer initialized", "strategy", strategy.Name())

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("leaddistributor"))

	apiGroup := e.Group("/api/v1")
	handler := api.NewHandler(pipeline, reportService, agentDir, taskStore, logger, cfg.Upload.MaxBytes)
	handler.RegisterRoutes(apiGroup)

	logger.Info("REST API handlers mounted")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
