package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Set upserts a preference. Failures are logged, never returned.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) {
	db := s.conn()
	if db == nil {
		return
	}

	_, err := db.ExecContext(ctx, `
INSERT INTO preferences (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		s.logger.Printf("ERROR: %v: saving preference [%s]: %v", weather.ErrPersistence, key, err)
		return
	}
	s.logger.Printf("DEBUG: preference [%s] saved with value: %s", key, value)
}

// Get returns the stored value for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool) {
	db := s.conn()
	if db == nil {
		return "", false
	}

	var value sql.NullString
	err := db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.logger.Printf("ERROR: %v: retrieving preference [%s]: %v", weather.ErrPersistence, key, err)
		return "", false
	}
	return value.String, value.Valid
}
