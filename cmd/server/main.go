package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/api"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/checker"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/config"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	opts := checker.Options{
		Logger:       logger,
		Pricing:      config.LoadPricing(),
		MaxDocuments: config.MaxDocumentsPerAnalysis(),
	}

	// The database is optional: without it the session runs memory-only.
	if dbURL := config.DatabaseURL(); dbURL != "" {
		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		logger.Info("connected to database")

		opts.Ledger = storage.NewPostgresLedger(db)
		opts.Archive = storage.NewPostgresArchive(db)

		records, err := storage.NewPostgresMonitoredSourceRepository(db).List(context.Background())
		if err != nil {
			logger.Warn("failed to load monitored sources", zap.Error(err))
		} else {
			opts.Sources = storage.RestoreSources(records)
			logger.Info("restored monitored sources", zap.Int("count", len(opts.Sources)))
		}
	} else {
		logger.Info("no DATABASE_URL set, running memory-only")
	}

	engine := checker.New(opts)
	server := api.NewServer(engine, logger)

	addr := ":" + strconv.Itoa(config.ServerPort())
	srv := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
