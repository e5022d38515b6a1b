package main

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const usersCollection = "users"

type UserStore interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, user CreateUser) (*User, error)
}

// UsersHandler serves /users
type UsersHandler struct {
	store   UserStore
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *CloudWatchMetrics
}

func NewUsersHandler(store UserStore, logger *zap.Logger, tracer trace.Tracer, metrics *CloudWatchMetrics) *UsersHandler {
	return &UsersHandler{store: store, logger: logger, tracer: tracer, metrics: metrics}
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UsersHandler")
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

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) error {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []User{}
	}
	writeJSON(w, http.StatusOK, users)
	return nil
}

func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request) error {
	var in CreateUser
	if err := decodeJSON(r, &in, false); err != nil {
		return err
	}
	if err := validatePayload(in); err != nil {
		return err
	}

	if _, err := h.store.CreateUser(r.Context(), in); err != nil {
		return err
	}
	go h.metrics.sendCreatedRowMetric(usersCollection)

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "User added!"})
	return nil
}
