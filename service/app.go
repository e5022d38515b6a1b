package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Pinger reports backing database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores groups the collaborators injected into the handlers
type Stores struct {
	Drinks   CoffeeDrinkStore
	Shops    CoffeeShopStore
	Users    UserStore
	DrinkLog DrinkLogStore
	Photos   PhotoStore
	DB       Pinger
}

// App represents the application instance
type App struct {
	cfg     *Config
	stores  Stores
	logger  *zap.Logger
	metrics *CloudWatchMetrics
	tracer  trace.Tracer
}

func NewApp(cfg *Config, stores Stores, logger *zap.Logger, tracer trace.Tracer, metrics *CloudWatchMetrics) *App {
	return &App{
		cfg:     cfg,
		stores:  stores,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// healthHandler handles health check requests
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := app.tracer.Start(r.Context(), "healthHandler")
	defer span.End()

	dbStatus := "healthy"
	if err := app.stores.DB.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
		app.logger.Error("Database health check failed", zap.Error(err))
		span.RecordError(err)
	}
	span.SetAttributes(attribute.String("health.database", dbStatus))

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Database:  dbStatus,
	})
}
