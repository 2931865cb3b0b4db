package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const defaultSettingsTable = "club_settings"

// PostgresStore reads settings from the club_settings table.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// StoreOption configures the store.
type StoreOption func(*PostgresStore)

// WithTable overrides the settings table name.
func WithTable(table string) StoreOption {
	return func(s *PostgresStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewPostgresStore constructs a store.
func NewPostgresStore(db *sql.DB, opts ...StoreOption) *PostgresStore {
	store := &PostgresStore{db: db, table: defaultSettingsTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Lookup returns the first value found among keys, in key order.
func (s *PostgresStore) Lookup(ctx context.Context, keys ...string) (float64, bool, error) {
	if s == nil || s.db == nil {
		return 0, false, errors.New("settings store: nil db")
	}
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)
	for _, key := range keys {
		var raw string
		err := s.db.QueryRowContext(ctx, query, key).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, false, err
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false, fmt.Errorf("settings store: key %s holds non-numeric value %q", key, raw)
		}
		return value, true, nil
	}
	return 0, false, nil
}

// Upsert writes one setting value.
func (s *PostgresStore) Upsert(ctx context.Context, key string, value float64) error {
	if s == nil || s.db == nil {
		return errors.New("settings store: nil db")
	}
	if key == "" {
		return errors.New("settings store: empty key")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, s.table)
	_, err := s.db.ExecContext(ctx, query, key, strconv.FormatFloat(value, 'f', -1, 64))
	return err
}
