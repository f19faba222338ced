// Package main is the entry point for the document numbering API server.
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

	"penomoran/internal/config"
	"penomoran/internal/domain/auth"
	"penomoran/internal/domain/documents"
	"penomoran/internal/domain/reports"
	v1 "penomoran/internal/infrastructure/http/v1"
	"penomoran/internal/infrastructure/numerator"
	"penomoran/internal/infrastructure/storage/postgres"
	"penomoran/internal/infrastructure/storage/postgres/document_repo"
	"penomoran/internal/infrastructure/storage/postgres/report_repo"
	"penomoran/pkg/logger"
	legacy "penomoran/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting penomoran server", "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.ApplicationName = cfg.App.Name
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := migrateUp(pool, log); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
	}

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	// --- Numbering ---
	// The counter store always runs on the pool, never inside a caller's
	// transaction, so allocated values survive a rolled-back document write.
	counters := numerator.New(txManager.Pool())
	hijri := cfg.HijriStrategy()

	documentService := documents.NewService(
		document_repo.NewDocumentRepo(txManager),
		counters,
		txManager,
		documents.WithHijriStrategy(hijri),
		documents.WithAudit(auditService),
	)
	reportService := reports.NewService(report_repo.NewReportRepo(txManager), txManager)

	routerCfg := v1.RouterConfig{
		Logger:    log,
		Pool:      pool,
		Counters:  counters,
		Documents: documentService,
		Stats:     reportService,
		Audit:     auditService,
		Hijri:     hijri,
	}
	if cfg.Legacy.Enabled {
		routerCfg.Legacy = legacy.New(pool)
	}
	if cfg.Auth.Enabled() {
		routerCfg.JWTValidator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.Auth.JWTSecret, cfg.Auth.Issuer))
	} else {
		log.Warn("auth.jwt_secret is empty, API requests are not authenticated")
	}

	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port, "hijri_strategy", hijri.Name(), "legacy", cfg.Legacy.Enabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	pool.LogStats(ctx)

	log.Info("server stopped")
}

func migrateUp(pool *postgres.Pool, log *logger.Logger) error {
	m, err := postgres.NewMigrator(pool, log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}
