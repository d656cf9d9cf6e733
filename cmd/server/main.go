package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/techsalle/inventory/app/api"
	"github.com/techsalle/inventory/config"
	"github.com/techsalle/inventory/database"
	"github.com/techsalle/inventory/models"
	"github.com/techsalle/inventory/models/memory"
)

func main() {
	bootstrap := logrus.New()
	bootstrap.SetOutput(os.Stdout)
	bootstrap.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(bootstrap)
	if err != nil {
		bootstrap.WithError(err).Fatal("Invalid configuration")
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootstrap.WithError(err).Fatal("Invalid logging configuration")
	}
	logger.Info("Starting TechSalle inventory service...")

	deps, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise storage")
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := api.NewRouter(ctx, deps, api.Options{
		CORSOrigins:         cfg.CORSOrigins,
		MaxBodyBytes:        cfg.MaxBodyBytes,
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
		RateLimitCleanup:    cfg.RateLimitClean,
		RateLimitMaxClients: cfg.RateLimitMax,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
		return
	}
	logger.Info("Server stopped")
}

// openStore builds the repositories for the configured backend. The returned
// func releases any connections.
func openStore(cfg *config.Config, logger *logrus.Logger) (api.Deps, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage; data is lost on restart")
		store := memory.New()
		return api.Deps{
			Products:   store,
			Categories: store,
			Statistics: store,
			Health:     store,
			Log:        logger,
		}, func() {}, nil
	}

	if cfg.Migrate {
		if err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
			return api.Deps{}, nil, err
		}
	}

	db, err := database.Open(cfg.DatabaseURL, database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	}, logger)
	if err != nil {
		return api.Deps{}, nil, err
	}
	logger.Info("Database connection established.")

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	products := models.NewProductsRepository(db)
	deps := api.Deps{
		Products:   products,
		Categories: models.NewCategoriesRepository(db),
		Statistics: products,
		Health:     database.NewHealth(db),
		Log:        logger,
	}
	return deps, closeDB, nil
}
