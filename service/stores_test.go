package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// memoryStore is an in-memory stand-in for Database and the photo bucket.
// When err is set every call fails with it.
type memoryStore struct {
	mu     sync.Mutex
	err    error
	nextID int64

	drinks  []CoffeeDrink
	shops   []CoffeeShop
	users   []User
	log     []DrinkLog
	photos  map[string][]byte
	deleted []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{photos: map[string][]byte{}}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) Ping(context.Context) error {
	return m.err
}

func (m *memoryStore) ListCoffeeDrinks(context.Context) ([]CoffeeDrink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]CoffeeDrink, 0, len(m.drinks))
	for i := len(m.drinks) - 1; i >= 0; i-- {
		out = append(out, m.drinks[i])
	}
	return out, nil
}

func (m *memoryStore) GetCoffeeDrink(_ context.Context, id int64) (*CoffeeDrink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.drinks {
		if m.drinks[i].ID == id {
			d := m.drinks[i]
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryStore) CreateCoffeeDrink(_ context.Context, in CreateCoffeeDrink) (*CoffeeDrink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	d := CoffeeDrink{
		ID:          m.id(),
		Name:        in.Name,
		Description: in.Description,
		Rating:      in.Rating,
		CoffeeShop:  in.CoffeeShop,
		Price:       in.Price,
		CreatedAt:   time.Now(),
	}
	m.drinks = append(m.drinks, d)
	return &d, nil
}

func (m *memoryStore) UpdateCoffeeDrink(_ context.Context, id int64, patch CoffeeDrinkPatch) (*CoffeeDrink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.drinks {
		if m.drinks[i].ID != id {
			continue
		}
		d := &m.drinks[i]
		if patch.Name != nil {
			d.Name = *patch.Name
		}
		if patch.Description != nil {
			d.Description = patch.Description
		}
		if patch.Rating != nil {
			d.Rating = patch.Rating
		}
		if patch.CoffeeShop != nil {
			d.CoffeeShop = patch.CoffeeShop
		}
		if patch.Price != nil {
			d.Price = patch.Price
		}
		out := *d
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *memoryStore) DeleteCoffeeDrink(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.drinks {
		if m.drinks[i].ID == id {
			m.drinks = append(m.drinks[:i], m.drinks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) ListCoffeeShops(context.Context) ([]CoffeeShop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.shops, nil
}

func (m *memoryStore) CreateCoffeeShop(_ context.Context, in CreateCoffeeShop) (*CoffeeShop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s := CoffeeShop{ID: m.id(), Name: in.Name, Description: in.Description, Rating: in.Rating, CreatedAt: time.Now()}
	m.shops = append([]CoffeeShop{s}, m.shops...)
	return &s, nil
}

func (m *memoryStore) ListUsers(context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.users, nil
}

func (m *memoryStore) CreateUser(_ context.Context, in CreateUser) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u := User{ID: m.id(), Name: in.Name, Email: in.Email, CreatedAt: time.Now()}
	m.users = append([]User{u}, m.users...)
	return &u, nil
}

func (m *memoryStore) ListDrinkLogs(context.Context) ([]DrinkLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.log, nil
}

func (m *memoryStore) CreateDrinkLog(_ context.Context, in CreateDrinkLog) (*DrinkLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	e := DrinkLog{ID: m.id(), Drink: in.Drink, CreatedAt: time.Now()}
	m.log = append([]DrinkLog{e}, m.log...)
	return &e, nil
}

func (m *memoryStore) ListPhotos(context.Context) ([]PhotoObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []PhotoObject
	for name, body := range m.photos {
		out = append(out, PhotoObject{Name: name, Size: int64(len(body))})
	}
	return out, nil
}

func (m *memoryStore) UploadPhoto(_ context.Context, name string, body []byte) (*UploadedPhoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.photos[name]; ok {
		return nil, ErrPhotoExists
	}
	m.photos[name] = body
	return &UploadedPhoto{Path: name, FullPath: "coffee-photos/" + name}, nil
}

func (m *memoryStore) DeletePhoto(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.photos, name)
	m.deleted = append(m.deleted, name)
	return nil
}

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

// do sends a request with an optional JSON body to h and returns the recorder
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
