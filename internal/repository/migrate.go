package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createFlightsTableSQL = `
CREATE TABLE IF NOT EXISTS flights (
    flight_id      TEXT PRIMARY KEY,
    flight_number  TEXT NOT NULL,
    airline_name   TEXT NOT NULL,
    origin         TEXT NOT NULL,
    destination    TEXT NOT NULL,
    departure_time TIMESTAMPTZ NOT NULL,
    arrival_time   TIMESTAMPTZ NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (arrival_time > departure_time)
);`

const createFlightsIndexSQL = `
CREATE INDEX IF NOT EXISTS flights_origin_departure_idx ON flights (origin, departure_time);`

const createBookingsTableSQL = `
CREATE TABLE IF NOT EXISTS bookings (
    ref_id      TEXT PRIMARY KEY,
    origin      TEXT NOT NULL,
    destination TEXT NOT NULL,
    pieces      INTEGER NOT NULL CHECK (pieces > 0),
    weight_kg   DOUBLE PRECISION NOT NULL CHECK (weight_kg > 0),
    flight_ids  TEXT[] NOT NULL DEFAULT '{}',
    status      TEXT NOT NULL,
    timeline    JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);`

const createBookingsIndexSQL = `
CREATE INDEX IF NOT EXISTS bookings_created_idx ON bookings (created_at DESC, ref_id DESC);`

// Migrate creates the catalog and booking tables if they do not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	statements := []struct {
		name string
		sql  string
	}{
		{"flights", createFlightsTableSQL},
		{"flights index", createFlightsIndexSQL},
		{"bookings", createBookingsTableSQL},
		{"bookings index", createBookingsIndexSQL},
	}
	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("migrate %s: %w", stmt.name, err)
		}
	}
	return nil
}
