package main

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopsHandler(t *testing.T) {
	store := newMemoryStore()
	h := NewShopsHandler(store, nopLogger(), testTracer(), nil)

	w := do(t, h, http.MethodGet, "/coffee_shops", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, h, http.MethodPost, "/coffee_shops", map[string]any{"name": "Blue Bottle", "rating": 4.8})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"Coffee shop added!"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/coffee_shops", nil)
	shops := decodeBody[[]CoffeeShop](t, w)
	require.Len(t, shops, 1)
	assert.Equal(t, "Blue Bottle", shops[0].Name)

	w = do(t, h, http.MethodPost, "/coffee_shops", map[string]any{"rating": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", decodeBody[ErrorResponse](t, w).Error)

	w = do(t, h, http.MethodDelete, "/coffee_shops/1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Allow"))
}

func TestUsersHandler(t *testing.T) {
	store := newMemoryStore()
	h := NewUsersHandler(store, nopLogger(), testTracer(), nil)

	w := do(t, h, http.MethodPost, "/users", map[string]any{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"User added!"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/users", nil)
	users := decodeBody[[]User](t, w)
	require.Len(t, users, 1)
	assert.Equal(t, "ada@example.com", users[0].Email)

	w = do(t, h, http.MethodPost, "/users", map[string]any{"name": "Ada"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", decodeBody[ErrorResponse](t, w).Error)

	w = do(t, h, http.MethodPut, "/users/1", map[string]any{"name": "Grace"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())

	store.err = errors.New(`duplicate key value violates unique constraint "users_email_key"`)
	w = do(t, h, http.MethodPost, "/users", map[string]any{"name": "Ada", "email": "ada@example.com"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, store.err.Error(), decodeBody[ErrorResponse](t, w).Error)
}

func TestDrinkLogHandler(t *testing.T) {
	store := newMemoryStore()
	h := NewDrinkLogHandler(store, nopLogger(), testTracer(), nil)

	w := do(t, h, http.MethodGet, "/drinks", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, h, http.MethodPost, "/drinks", map[string]any{"drink": "flat white"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"drink":"drink sent!"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/drinks", nil)
	entries := decodeBody[[]DrinkLog](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "flat white", entries[0].Drink)

	w = do(t, h, http.MethodPost, "/drinks", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", decodeBody[ErrorResponse](t, w).Error)

	w = do(t, h, http.MethodDelete, "/drinks", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	store.err = errors.New("connection refused")
	w = do(t, h, http.MethodGet, "/drinks", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"connection refused"}`, w.Body.String())
}

func TestDrinkLogHandler_CreateBackendError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New(`null value in column "drink" violates not-null constraint`)
	h := NewDrinkLogHandler(store, nopLogger(), testTracer(), nil)

	w := do(t, h, http.MethodPost, "/drinks", map[string]any{"drink": "cortado"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, store.err.Error(), decodeBody[ErrorResponse](t, w).Error)

	w = do(t, h, http.MethodPost, "/drinks", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON body", decodeBody[ErrorResponse](t, w).Error)
}
