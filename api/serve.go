package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/inventory-catalog/docs"
	"github.com/rogerio-castellano/inventory-catalog/internal/config"
	"github.com/rogerio-castellano/inventory-catalog/internal/db"
	"github.com/rogerio-castellano/inventory-catalog/internal/http/ban"
	"github.com/rogerio-castellano/inventory-catalog/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-catalog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-catalog/internal/http/router"
	"github.com/rogerio-castellano/inventory-catalog/internal/logging"
	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/rogerio-castellano/inventory-catalog/internal/redissvc"
	"github.com/rogerio-castellano/inventory-catalog/internal/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.App.Debug {
			cfg.Log.Level = "debug"
		}
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

type storage struct {
	materials repo.MaterialRepository
	metrics   repo.MetricsRepository
	close     func() error
}

func openStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*storage, error) {
	switch cfg.Driver {
	case "postgres":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx, database); err != nil {
			database.Close()
			return nil, err
		}
		return &storage{
			materials: repo.NewPostgresMaterialRepository(database),
			metrics:   repo.NewPostgresMetricsRepository(database),
			close:     database.Close,
		}, nil
	default:
		materials, err := repo.NewJSONFileMaterialRepository(cfg.DatabaseFile, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using JSON catalog", zap.String("file", materials.Path()))
		return &storage{
			materials: materials,
			metrics:   repo.NewCatalogMetricsRepository(materials),
			close:     func() error { return nil },
		}, nil
	}
}

// openTracker returns a Redis-backed ban tracker when redis.addr is set and an
// in-memory one otherwise.
func openTracker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ban.Tracker, func() error, error) {
	policy := ban.Policy{
		MaxStrikes:   cfg.RateLimit.MaxStrikes,
		StrikeWindow: cfg.RateLimit.StrikeWindow,
		BanDuration:  cfg.RateLimit.BanDuration,
	}
	if cfg.Redis.Addr == "" {
		tracker := ban.NewMemoryTracker(policy)
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					tracker.Cleanup()
				}
			}
		}()
		return tracker, func() error { return nil }, nil
	}

	rs, err := redissvc.NewRedisService(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Ban list stored in Redis", zap.String("addr", cfg.Redis.Addr))
	return ban.NewRedisTracker(rs, policy), rs.Close, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.close()

	server := handlers.NewServer(store.materials, store.metrics, models.NewValidator(), logger)
	server.MaxBodyBytes = cfg.Server.MaxBodyBytes

	deps := router.Deps{
		Server:      server,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	}

	if cfg.RateLimit.Enabled {
		tracker, closeTracker, err := openTracker(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeTracker()

		limiter := rl.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.VisitorTTL)
		go limiter.StartVisitorCleanupLoop(ctx, time.Minute)
		go ban.StartDailyBanSummary(ctx, tracker, logger)

		deps.Limiter = limiter
		deps.Tracker = tracker
	}

	if cfg.Docs.Enabled {
		docs.SwaggerInfo.Title = cfg.App.Name
		docs.SwaggerInfo.Version = cfg.App.Version
		deps.DocsURL = cfg.Docs.URL
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
