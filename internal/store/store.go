package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store persists snapshots of the catalog, inventory and sale ledger to
// postgres. The in-memory stores remain authoritative at runtime; the
// database is the durability layer loaded at startup and written on change.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// EnsureSchema creates the snapshot tables if they do not exist
func (s *Store) EnsureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_items (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		normalized_name TEXT NOT NULL UNIQUE,
		reference_price BIGINT,
		seq BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS inventory_records (
		item_id TEXT PRIMARY KEY REFERENCES catalog_items(id),
		stock INT NOT NULL CHECK (stock >= 0),
		asking_price BIGINT,
		last_sold_at TIMESTAMPTZ,
		last_sold_price BIGINT,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sale_entries (
		id BIGINT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES catalog_items(id),
		quantity INT NOT NULL CHECK (quantity > 0),
		unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
		sold_at TIMESTAMPTZ NOT NULL
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
