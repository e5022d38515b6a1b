package main

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const drinkLogCollection = "drinks"

type DrinkLogStore interface {
	ListDrinkLogs(ctx context.Context) ([]DrinkLog, error)
	CreateDrinkLog(ctx context.Context, entry CreateDrinkLog) (*DrinkLog, error)
}

// DrinkLogHandler serves /drinks, a plain log of drinks sent by clients
type DrinkLogHandler struct {
	store   DrinkLogStore
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *CloudWatchMetrics
}

func NewDrinkLogHandler(store DrinkLogStore, logger *zap.Logger, tracer trace.Tracer, metrics *CloudWatchMetrics) *DrinkLogHandler {
	return &DrinkLogHandler{store: store, logger: logger, tracer: tracer, metrics: metrics}
}

func (h *DrinkLogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DrinkLogHandler")
	defer span.End()
	r = r.WithContext(ctx)

	var err error
	switch r.Method {
	case http.MethodGet:
		err = h.list(w, r)
	case http.MethodPost:
		err = h.create(w, r)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}

	if err != nil {
		returnErrorResponse(w, r, h.logger, h.metrics, err)
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (h *DrinkLogHandler) list(w http.ResponseWriter, r *http.Request) error {
	entries, err := h.store.ListDrinkLogs(r.Context())
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []DrinkLog{}
	}
	writeJSON(w, http.StatusOK, entries)
	return nil
}

func (h *DrinkLogHandler) create(w http.ResponseWriter, r *http.Request) error {
	var in CreateDrinkLog
	if err := decodeJSON(r, &in, false); err != nil {
		return err
	}
	if err := validatePayload(in); err != nil {
		return err
	}

	if _, err := h.store.CreateDrinkLog(r.Context(), in); err != nil {
		return err
	}
	go h.metrics.sendCreatedRowMetric(drinkLogCollection)

	writeJSON(w, http.StatusOK, DrinkSentResponse{Success: true, Drink: "drink sent!"})
	return nil
}
