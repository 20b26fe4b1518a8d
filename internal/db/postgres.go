package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Connect opens a pgx-backed pool and pings it. An empty url falls back to
// the DATABASE_URL environment variable.
func Connect(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("no database url configured and DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS materials (
	id            BIGSERIAL PRIMARY KEY,
	name          VARCHAR(200) NOT NULL,
	category      VARCHAR(100) NOT NULL,
	quantity      DOUBLE PRECISION NOT NULL CHECK (quantity >= 0),
	unit          VARCHAR(20) NOT NULL,
	unit_price    DOUBLE PRECISION NOT NULL CHECK (unit_price >= 0),
	supplier      VARCHAR(150) NOT NULL,
	description   VARCHAR(1000),
	minimum_stock DOUBLE PRECISION CHECK (minimum_stock >= 0),
	location      VARCHAR(100),
	project       VARCHAR(150),
	responsible   VARCHAR(100),
	sku           VARCHAR(50),
	entry_date    DATE,
	status        VARCHAR(20) NOT NULL DEFAULT 'activo'
)`

// EnsureSchema creates the materials table when it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
