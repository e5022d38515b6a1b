package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	tracer, cleanup, err := initTracing(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer cleanup()

	// Initialize database connection
	db, err := Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := db.initSchema(ctx, tracer); err != nil {
			logger.Fatal("Failed to initialize database schema", zap.Error(err))
		}
	}

	photos, err := newPhotoStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize photo storage", zap.Error(err))
	}

	var metrics *CloudWatchMetrics
	if cfg.MetricsEnabled {
		metrics, err = NewCloudWatchMetrics(cfg.Region, logger)
		if err != nil {
			logger.Fatal("Failed to create AWS session", zap.Error(err))
		}
	}

	app := NewApp(cfg, Stores{
		Drinks:   db,
		Shops:    db,
		Users:    db,
		DrinkLog: db,
		Photos:   photos,
		DB:       db,
	}, logger, tracer, metrics)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRoutes(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("base_path", cfg.BasePath),
			zap.String("storage_driver", cfg.Storage.Driver),
			zap.String("bucket", cfg.Storage.Bucket),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build(zap.Fields(zap.String("service", serviceName)))
}

func newPhotoStore(ctx context.Context, cfg *Config, logger *zap.Logger) (PhotoStore, error) {
	switch cfg.Storage.Driver {
	case storageDriverMinio:
		store, err := NewMinioPhotoStore(cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx, cfg.Region); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return NewS3PhotoStore(cfg.Storage, cfg.Region, logger)
	}
}
