// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package favorites persists saved DisplayItems in SQLite so they outlive the
// search that produced them.
package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/price-scout/pkg/types"
)

const (
	defaultDataDir = "data"
	dbFile         = "price-scout.db"
)

// Saved is a stored item and the time it was saved.
type Saved struct {
	types.DisplayItem `yaml:",inline"`
	SavedAt           time.Time `json:"saved_at" yaml:"saved_at"`
}

// Store manages the saved-items database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens or creates the database at DataDir/price-scout.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.DataDir
	if dir == "" {
		dir = defaultDataDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS saved_items (
			id TEXT PRIMARY KEY,
			item_name TEXT NOT NULL,
			location_name TEXT NOT NULL,
			price REAL NOT NULL,
			currency TEXT,
			payload TEXT NOT NULL,
			saved_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_saved_items_saved_at ON saved_items(saved_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores item under its ID. Saving an ID that already exists replaces
// the payload and keeps the original save time.
func (s *Store) Save(ctx context.Context, item types.DisplayItem) error {
	if item.ID == "" {
		return fmt.Errorf("saving item: empty id")
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item %s: %w", item.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_items (id, item_name, location_name, price, currency, payload, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			item_name = excluded.item_name,
			location_name = excluded.location_name,
			price = excluded.price,
			currency = excluded.currency,
			payload = excluded.payload`,
		item.ID, item.ItemName, item.LocationName, item.Price, item.Currency,
		string(payload), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving item %s: %w", item.ID, err)
	}
	return nil
}

// Remove deletes the item with id. It reports whether a row was removed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("removing item %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("removing item %s: %w", id, err)
	}
	return n > 0, nil
}

// Has reports whether id is saved.
func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM saved_items WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking item %s: %w", id, err)
	}
	return n > 0, nil
}

// List returns every saved item, most recently saved first.
func (s *Store) List(ctx context.Context) ([]Saved, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload, saved_at FROM saved_items ORDER BY saved_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing saved items: %w", err)
	}
	defer rows.Close()

	var out []Saved
	for rows.Next() {
		var payload, savedAt string
		if err := rows.Scan(&payload, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning saved item: %w", err)
		}
		var item Saved
		if err := json.Unmarshal([]byte(payload), &item.DisplayItem); err != nil {
			return nil, fmt.Errorf("decoding saved item: %w", err)
		}
		item.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing saved_at for %s: %w", item.ID, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
