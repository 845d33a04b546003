// backend-go/cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/stocksense/backend-go/internal/api"
	"github.com/andresuchdata/stocksense/backend-go/internal/api/middleware"
	"github.com/andresuchdata/stocksense/backend-go/internal/cache"
	"github.com/andresuchdata/stocksense/backend-go/internal/config"
	"github.com/andresuchdata/stocksense/backend-go/internal/repository"
	"github.com/andresuchdata/stocksense/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/stocksense/backend-go/internal/service"
	"github.com/andresuchdata/stocksense/backend-go/internal/storage"
	"github.com/andresuchdata/stocksense/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.UseJSON(os.Stdout)
	}

	ctx := context.Background()

	store, err := storage.New(ctx, storage.Config{
		Driver:               cfg.Storage.Driver,
		LocalDir:             cfg.Storage.LocalDir,
		Endpoint:             cfg.Storage.Endpoint,
		AccessKey:            cfg.Storage.AccessKey,
		SecretKey:            cfg.Storage.SecretKey,
		Bucket:               cfg.Storage.Bucket,
		Region:               cfg.Storage.Region,
		UseSSL:               cfg.Storage.UseSSL,
		DriveCredentialsJSON: cfg.Storage.DriveCredentialsJSON,
		DriveFolderID:        cfg.Storage.DriveFolderID,
	})
	if err != nil {
		logger.Log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize storage")
	}

	dashboards, items, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		dashboards, items = cache.NewNoopDashboardCache(), cache.NewNoopStockItemsCache()
	}

	// Initialize database
	runs := repository.NewMemoryAnalysisRunRepository()
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := postgres.Migrate(ctx, db.DB.DB); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		runs = repository.NewAnalysisRunRepository(db)
	}

	metrics := middleware.NewMetrics()

	// Initialize services
	stockHealthService := service.NewStockHealthService(store, dashboards, items, runs, service.Options{
		DemoSalesKey:     cfg.App.DemoSalesKey,
		DemoStockKey:     cfg.App.DemoStockKey,
		ExpiryWindowDays: cfg.App.ExpiryWindowDays,
		Observer:         metrics,
	})

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{StockHealthService: stockHealthService}, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		Metrics:        metrics,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Driver).
			Bool("cache", cfg.Cache.Enabled).
			Bool("database", cfg.Database.Enabled).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
