package main

import (
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const coffeeDrinksCollection = "coffee_drinks"

// CoffeeDrinkStore is the relational capability the drinks handler needs
type CoffeeDrinkStore interface {
	ListCoffeeDrinks(ctx context.Context) ([]CoffeeDrink, error)
	GetCoffeeDrink(ctx context.Context, id int64) (*CoffeeDrink, error)
	CreateCoffeeDrink(ctx context.Context, drink CreateCoffeeDrink) (*CoffeeDrink, error)
	UpdateCoffeeDrink(ctx context.Context, id int64, patch CoffeeDrinkPatch) (*CoffeeDrink, error)
	DeleteCoffeeDrink(ctx context.Context, id int64) error
}

// DrinksHandler serves /coffee_drinks and /coffee_drinks/{id}
type DrinksHandler struct {
	store   CoffeeDrinkStore
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *CloudWatchMetrics
}

func NewDrinksHandler(store CoffeeDrinkStore, logger *zap.Logger, tracer trace.Tracer, metrics *CloudWatchMetrics) *DrinksHandler {
	return &DrinksHandler{store: store, logger: logger, tracer: tracer, metrics: metrics}
}

func (h *DrinksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DrinksHandler")
	defer span.End()
	r = r.WithContext(ctx)

	var err error
	switch r.Method {
	case http.MethodGet:
		err = h.get(w, r)
	case http.MethodPost:
		err = h.create(w, r)
	case http.MethodPut, http.MethodPatch:
		err = h.update(w, r)
	case http.MethodDelete:
		err = h.delete(w, r)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)
		return
	}

	if err != nil {
		returnErrorResponse(w, r, h.logger, h.metrics, err)
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (h *DrinksHandler) get(w http.ResponseWriter, r *http.Request) error {
	raw := identifier(r, coffeeDrinksCollection)
	if raw == "" {
		drinks, err := h.store.ListCoffeeDrinks(r.Context())
		if err != nil {
			return err
		}
		if drinks == nil {
			drinks = []CoffeeDrink{}
		}
		trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int("coffee_drinks.count", len(drinks)))
		writeJSON(w, http.StatusOK, drinks)
		return nil
	}

	id, err := parseID(raw)
	if err != nil {
		return err
	}
	drink, err := h.store.GetCoffeeDrink(r.Context(), id)
	if err != nil {
		return drinkNotFound(err)
	}
	writeJSON(w, http.StatusOK, drink)
	return nil
}

func (h *DrinksHandler) create(w http.ResponseWriter, r *http.Request) error {
	var in CreateCoffeeDrink
	if err := decodeJSON(r, &in, false); err != nil {
		return err
	}
	if err := validatePayload(in); err != nil {
		return err
	}

	drink, err := h.store.CreateCoffeeDrink(r.Context(), in)
	if err != nil {
		return err
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.Int64("coffee_drink.id", drink.ID),
		attribute.String("coffee_drink.name", drink.Name),
	)
	go h.metrics.sendCreatedRowMetric(coffeeDrinksCollection)

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: drink})
	return nil
}

func (h *DrinksHandler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(identifier(r, coffeeDrinksCollection))
	if err != nil {
		return err
	}

	var patch CoffeeDrinkPatch
	if err := decodeJSON(r, &patch, true); err != nil {
		return err
	}
	if patch == (CoffeeDrinkPatch{}) {
		return badRequest("No update data provided")
	}

	drink, err := h.store.UpdateCoffeeDrink(r.Context(), id, patch)
	if err != nil {
		return drinkNotFound(err)
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: drink})
	return nil
}

func (h *DrinksHandler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(identifier(r, coffeeDrinksCollection))
	if err != nil {
		return err
	}

	if err := h.store.DeleteCoffeeDrink(r.Context(), id); err != nil {
		return drinkNotFound(err)
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Coffee drink deleted!"})
	return nil
}

func drinkNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return notFound("Coffee drink not found")
	}
	return err
}
