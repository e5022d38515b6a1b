package main

import (
	"net/http"
	"time"
)

// CoffeeDrink model
type CoffeeDrink struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Rating      *float64  `json:"rating" db:"rating"`
	CoffeeShop  *string   `json:"coffee_shop" db:"coffee_shop"`
	Price       *float64  `json:"price" db:"price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateCoffeeDrink is the POST payload for coffee drinks
type CreateCoffeeDrink struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Rating      *float64 `json:"rating" validate:"required"`
	CoffeeShop  *string  `json:"coffee_shop"`
	Price       *float64 `json:"price"`
}

// CoffeeDrinkPatch is a partial update. Nil fields are left untouched.
type CoffeeDrinkPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Rating      *float64 `json:"rating"`
	CoffeeShop  *string  `json:"coffee_shop"`
	Price       *float64 `json:"price"`
}

// CoffeeShop model
type CoffeeShop struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Rating      *float64  `json:"rating" db:"rating"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateCoffeeShop
type CreateCoffeeShop struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Rating      *float64 `json:"rating"`
}

// User model
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateUser
type CreateUser struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// DrinkLog is a free-text entry in the drinks table
type DrinkLog struct {
	ID        int64     `json:"id" db:"id"`
	Drink     string    `json:"drink" db:"drink"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateDrinkLog
type CreateDrinkLog struct {
	Drink string `json:"drink" validate:"required"`
}

// PhotoObject is one entry of the bucket listing
type PhotoObject struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// UploadPhoto is the JSON upload payload; FileData is base64 encoded.
type UploadPhoto struct {
	FileName string `json:"fileName"`
	FileData string `json:"fileData"`
}

// UploadedPhoto is returned after a successful upload
type UploadedPhoto struct {
	Path     string `json:"path"`
	FullPath string `json:"fullPath"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is written by every mutating operation
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// DrinkSentResponse is the drink log's POST reply
type DrinkSentResponse struct {
	Success bool   `json:"success"`
	Drink   string `json:"drink"`
}

// Response writer wrapper
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
