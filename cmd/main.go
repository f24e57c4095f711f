/*
Package main is the entry point for the relay server.

It is responsible for loading configuration, initializing the global logging system,
opening the tracker store and report storage, starting the relay hubs, setting up
the HTTP server, and gracefully handling operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"relayhub/internal/app/db"
	"relayhub/internal/app/relay"
	"relayhub/internal/app/storage"
	"relayhub/internal/app/tracker"
	"relayhub/internal/configs"
	"relayhub/internal/handler"
	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/metrics"
)

func main() {
	// Load configuration from the environment and .env
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("database", cfg.DatabaseDSN != "").
		Bool("report_export", cfg.StorageEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open tracker store")
	}
	defer closeStore()

	reports, err := openReportStorage(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to initialize report storage")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	manager := relay.NewManager(m)

	deps := &handler.AppDeps{
		Manager:  manager,
		Config:   cfg,
		Tracker:  tracker.NewService(store, reports),
		Accounts: store,
		Metrics:  m,
		Gatherer: reg,
	}

	router, stopLimiters := handler.Router(deps)
	defer stopLimiters()

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Relay server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	// Hijacked WebSocket connections are not covered by server.Shutdown.
	manager.Shutdown()

	logx.Info("Server gracefully stopped.")
}

// openStore selects PostgreSQL when DATABASE_URL is set and the in-memory store otherwise.
func openStore(ctx context.Context, cfg *configs.AppConfig) (tracker.Store, func(), error) {
	if cfg.DatabaseDSN == "" {
		logx.Warn("DATABASE_URL not set. Tracker data is kept in memory and lost on restart.")
		return tracker.NewMemoryStore(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	logx.Info("Connected to PostgreSQL.")
	return tracker.NewPostgresStore(pool), pool.Close, nil
}

// openReportStorage returns nil when export is not configured.
func openReportStorage(ctx context.Context, cfg *configs.AppConfig) (tracker.ReportStorage, error) {
	if !cfg.StorageEnabled() {
		logx.Info("Object storage not configured. Report export disabled.")
		return nil, nil
	}

	svc, err := storage.NewStorageService(ctx, storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}

	return svc, nil
}
