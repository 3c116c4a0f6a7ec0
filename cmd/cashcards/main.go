package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"

	"cashcards/internal/app/cashcards"
	"cashcards/internal/auth"
	"cashcards/internal/config"
	"cashcards/internal/infrastructure/database"
	"cashcards/internal/infrastructure/metrics"
	"cashcards/internal/repository/cashcard_repo"
	"cashcards/internal/repository/cashcard_repo/memory"
	"cashcards/internal/repository/cashcard_repo/postgres"
	"cashcards/internal/repository/cashcard_repo/sqlite"
	"cashcards/internal/router"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openRepository(cfg *config.Config, logger *zap.Logger) (cashcard_repo.CashCardRepository, io.Closer, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite storage", zap.String("path", cfg.SQLitePath))
		return sqlite.NewCashCardRepository(db), db, nil

	case config.BackendPostgres:
		dbConfig := cfg.Database()
		logger.Info("Waiting for database to be available...")
		db, err := database.ConnectWithRetry(dbConfig, cfg.DBConnectRetries, cfg.DBConnectRetryDelay, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to PostgreSQL database!")

		logger.Info("Running database migrations...")
		if err := database.Migrate(dbConfig.MigrationURL(), logger); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewCashCardRepository(db, logger.With(zap.String("component", "CashCardRepository"))), db, nil

	default:
		logger.Warn("Using in-memory storage, cash cards are lost on restart")
		return memory.NewCashCardRepository(), nopCloser{}, nil
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()
	appLogger.Info("Cash Card Service starting...", zap.String("storage_backend", cfg.StorageBackend))

	store, closer, err := openRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := closer.Close(); err != nil {
			appLogger.Error("Error closing storage", zap.Error(err))
		} else {
			appLogger.Info("Storage closed.")
		}
	}()

	recorder := metrics.NewRecorder()
	repo := cashcard_repo.Instrument(store, recorder)

	provider, err := auth.NewInMemoryIdentityProvider(cfg.Users, bcrypt.DefaultCost)
	if err != nil {
		appLogger.Fatal("Failed to build identity provider", zap.Error(err))
	}
	appLogger.Info("Identity provider initialized.", zap.Int("users", len(cfg.Users)), zap.String("owner_role", cfg.OwnerRole))

	cashCardService := cashcards.NewCashCardService(
		repo,
		appLogger.With(zap.String("component", "CashCardService")),
	)
	appLogger.Info("Cash Card Service initialized.")

	handler := router.NewRouter(cfg, router.Dependencies{
		Service:  cashCardService,
		Provider: provider,
		Ready:    repo.Ping,
		Metrics:  recorder,
		Logger:   appLogger.With(zap.String("component", "HTTPHandler")),
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLogger.Info("Shutting down application...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		appLogger.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		appLogger.Info("HTTP server gracefully shut down.")
	}

	appLogger.Info("Application gracefully shut down.")
}
