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

	"github.com/andresuchdata/retailbi/internal/api"
	"github.com/andresuchdata/retailbi/internal/cache"
	"github.com/andresuchdata/retailbi/internal/config"
	"github.com/andresuchdata/retailbi/internal/drive"
	"github.com/andresuchdata/retailbi/internal/engine"
	"github.com/andresuchdata/retailbi/internal/format"
	"github.com/andresuchdata/retailbi/internal/loader"
	"github.com/andresuchdata/retailbi/internal/service"
	"github.com/andresuchdata/retailbi/internal/storage"
	"github.com/andresuchdata/retailbi/internal/workspace"
	"github.com/andresuchdata/retailbi/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetFormat(cfg.App.LogFormat)
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	reportCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory cache")
		reportCache = cache.NewMemory(0)
	}
	memo := cache.NewMemo(reportCache, cfg.Cache.KeyPrefix)

	ws := workspace.New(loader.New(), sources(ctx, cfg)...)

	sampleDefaults := loader.DefaultSampleOptions()
	sampleDefaults.Seed = cfg.App.SampleSeed
	if cfg.App.UseSample {
		if err := ws.SeedSamples(sampleDefaults); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to seed sample datasets")
		}
	}

	dashboards := service.NewDashboardService(
		ws,
		memo,
		format.New(cfg.App.CurrencySymbol),
		engine.Thresholds{OverstockMultiplier: cfg.App.OverstockMultiplier},
	)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Workspace:      ws,
		Dashboards:     dashboards,
		SampleDefaults: sampleDefaults,
	}, cfg.Server)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// sources wires the optional remote dataset sources. A source that fails to
// initialise stays disabled and its import endpoint answers 503.
func sources(ctx context.Context, cfg *config.Config) []workspace.Option {
	var opts []workspace.Option

	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Error().Err(err).Msg("Object storage disabled")
		} else {
			opts = append(opts, workspace.WithSource(workspace.SourceS3, workspace.ObjectFetcher{Storage: client}))
			logger.Log.Info().Str("bucket", cfg.Storage.Bucket).Msg("Object storage source enabled")
		}
	}

	if cfg.Drive.Enabled {
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			logger.Log.Error().Err(err).Msg("Google Drive source disabled")
		} else {
			opts = append(opts, workspace.WithSource(workspace.SourceDrive, svc))
			logger.Log.Info().Msg("Google Drive source enabled")
		}
	}

	return opts
}
