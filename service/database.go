package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	coffeeDrinkColumns = "id, name, description, rating, coffee_shop, price, created_at"
	coffeeShopColumns  = "id, name, description, rating, created_at"
	userColumns        = "id, name, email, created_at"
	drinkLogColumns    = "id, drink, created_at"
)

// schemaSQL bootstraps the tables when DB_AUTO_MIGRATE is on. Column types
// match the scan targets in models.go.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS coffee_shops (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	rating DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS coffee_drinks (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	rating DOUBLE PRECISION,
	coffee_shop TEXT,
	price DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS drinks (
	id BIGSERIAL PRIMARY KEY,
	drink TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Database wraps pgxpool.Pool with additional functionality
type Database struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open initializes a new database connection with pgxpool and tracing
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Database, error) {
	parsedConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Configure connection pool
	parsedConfig.MaxConns = 25
	parsedConfig.MinConns = 2
	parsedConfig.MaxConnLifetime = 5 * time.Minute
	parsedConfig.MaxConnIdleTime = 1 * time.Minute

	// Enable OpenTelemetry tracing
	parsedConfig.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, parsedConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	db.pool.Close()
}

// Ping checks the database connection
func (db *Database) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// initSchema creates the tables when they do not exist yet
func (db *Database) initSchema(ctx context.Context, tracer trace.Tracer) error {
	ctx, span := tracer.Start(ctx, "initSchema")
	defer span.End()

	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "Schema initialized successfully")
	return nil
}

// ListCoffeeDrinks returns every coffee drink, newest first
func (db *Database) ListCoffeeDrinks(ctx context.Context) ([]CoffeeDrink, error) {
	query := "SELECT " + coffeeDrinkColumns + " FROM coffee_drinks ORDER BY created_at DESC, id DESC"
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[CoffeeDrink])
}

// GetCoffeeDrink retrieves a coffee drink by ID
func (db *Database) GetCoffeeDrink(ctx context.Context, id int64) (*CoffeeDrink, error) {
	query := "SELECT " + coffeeDrinkColumns + " FROM coffee_drinks WHERE id = $1"
	rows, err := db.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	return collectOne[CoffeeDrink](rows)
}

// CreateCoffeeDrink inserts a coffee drink and returns the stored row
func (db *Database) CreateCoffeeDrink(ctx context.Context, drink CreateCoffeeDrink) (*CoffeeDrink, error) {
	query := `INSERT INTO coffee_drinks (name, description, rating, coffee_shop, price)
	VALUES ($1, $2, $3, $4, $5) RETURNING ` + coffeeDrinkColumns
	rows, err := db.pool.Query(ctx, query, drink.Name, drink.Description, drink.Rating, drink.CoffeeShop, drink.Price)
	if err != nil {
		return nil, err
	}
	return collectOne[CoffeeDrink](rows)
}

// UpdateCoffeeDrink applies the non-nil fields of patch and returns the updated row
func (db *Database) UpdateCoffeeDrink(ctx context.Context, id int64, patch CoffeeDrinkPatch) (*CoffeeDrink, error) {
	query, args, err := buildCoffeeDrinkUpdate(id, patch)
	if err != nil {
		return nil, err
	}
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectOne[CoffeeDrink](rows)
}

// DeleteCoffeeDrink removes a coffee drink by ID
func (db *Database) DeleteCoffeeDrink(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx, "DELETE FROM coffee_drinks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCoffeeShops returns every coffee shop, newest first
func (db *Database) ListCoffeeShops(ctx context.Context) ([]CoffeeShop, error) {
	query := "SELECT " + coffeeShopColumns + " FROM coffee_shops ORDER BY created_at DESC, id DESC"
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[CoffeeShop])
}

// CreateCoffeeShop inserts a coffee shop
func (db *Database) CreateCoffeeShop(ctx context.Context, shop CreateCoffeeShop) (*CoffeeShop, error) {
	query := "INSERT INTO coffee_shops (name, description, rating) VALUES ($1, $2, $3) RETURNING " + coffeeShopColumns
	rows, err := db.pool.Query(ctx, query, shop.Name, shop.Description, shop.Rating)
	if err != nil {
		return nil, err
	}
	return collectOne[CoffeeShop](rows)
}

// ListUsers returns every user, newest first
func (db *Database) ListUsers(ctx context.Context) ([]User, error) {
	query := "SELECT " + userColumns + " FROM users ORDER BY created_at DESC, id DESC"
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[User])
}

// CreateUser inserts a user
func (db *Database) CreateUser(ctx context.Context, user CreateUser) (*User, error) {
	query := "INSERT INTO users (name, email) VALUES ($1, $2) RETURNING " + userColumns
	rows, err := db.pool.Query(ctx, query, user.Name, user.Email)
	if err != nil {
		return nil, err
	}
	return collectOne[User](rows)
}

// ListDrinkLogs returns every drink log entry, newest first
func (db *Database) ListDrinkLogs(ctx context.Context) ([]DrinkLog, error) {
	query := "SELECT " + drinkLogColumns + " FROM drinks ORDER BY created_at DESC, id DESC"
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[DrinkLog])
}

// CreateDrinkLog inserts a drink log entry
func (db *Database) CreateDrinkLog(ctx context.Context, entry CreateDrinkLog) (*DrinkLog, error) {
	query := "INSERT INTO drinks (drink) VALUES ($1) RETURNING " + drinkLogColumns
	rows, err := db.pool.Query(ctx, query, entry.Drink)
	if err != nil {
		return nil, err
	}
	return collectOne[DrinkLog](rows)
}

// collectOne scans exactly one row, mapping an empty result to ErrNotFound
func collectOne[T any](rows pgx.Rows) (*T, error) {
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// buildCoffeeDrinkUpdate renders the UPDATE statement for the set fields of patch.
func buildCoffeeDrinkUpdate(id int64, patch CoffeeDrinkPatch) (string, []any, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{column}.Sanitize(), len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Rating != nil {
		add("rating", *patch.Rating)
	}
	if patch.CoffeeShop != nil {
		add("coffee_shop", *patch.CoffeeShop)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if len(sets) == 0 {
		return "", nil, errEmptyPatch
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE coffee_drinks SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), coffeeDrinkColumns)
	return query, args, nil
}

var errEmptyPatch = errors.New("no update data provided")
