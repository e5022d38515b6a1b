package main

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const coffeeShopsCollection = "coffee_shops"

type CoffeeShopStore interface {
	ListCoffeeShops(ctx context.Context) ([]CoffeeShop, error)
	CreateCoffeeShop(ctx context.Context, shop CreateCoffeeShop) (*CoffeeShop, error)
}

// ShopsHandler serves /coffee_shops
type ShopsHandler struct {
	store   CoffeeShopStore
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *CloudWatchMetrics
}

func NewShopsHandler(store CoffeeShopStore, logger *zap.Logger, tracer trace.Tracer, metrics *CloudWatchMetrics) *ShopsHandler {
	return &ShopsHandler{store: store, logger: logger, tracer: tracer, metrics: metrics}
}

func (h *ShopsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ShopsHandler")
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

func (h *ShopsHandler) list(w http.ResponseWriter, r *http.Request) error {
	shops, err := h.store.ListCoffeeShops(r.Context())
	if err != nil {
		return err
	}
	if shops == nil {
		shops = []CoffeeShop{}
	}
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int("coffee_shops.count", len(shops)))
	writeJSON(w, http.StatusOK, shops)
	return nil
}

func (h *ShopsHandler) create(w http.ResponseWriter, r *http.Request) error {
	var in CreateCoffeeShop
	if err := decodeJSON(r, &in, false); err != nil {
		return err
	}
	if err := validatePayload(in); err != nil {
		return err
	}

	if _, err := h.store.CreateCoffeeShop(r.Context(), in); err != nil {
		return err
	}
	go h.metrics.sendCreatedRowMetric(coffeeShopsCollection)

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Coffee shop added!"})
	return nil
}
