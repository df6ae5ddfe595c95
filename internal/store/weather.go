package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// SaveWeatherData inserts a new cache row stamped with the current time.
// Earlier rows for the same location are kept unless retention is configured.
func (s *SQLiteStore) SaveWeatherData(ctx context.Context, location, data string) {
	db := s.conn()
	if db == nil {
		return
	}

	timestamp := s.now().UnixMilli()
	_, err := db.ExecContext(ctx,
		`INSERT INTO weather (location, data, timestamp) VALUES (?, ?, ?)`,
		location, data, timestamp,
	)
	if err != nil {
		s.logger.Printf("ERROR: %v: saving weather data for %s: %v", weather.ErrPersistence, location, err)
		return
	}
	s.logger.Printf("DEBUG: weather data saved for %s", location)

	if s.maxHistory > 0 {
		s.prune(ctx, db, location)
	}
}

// prune keeps only the newest maxHistory rows for location.
func (s *SQLiteStore) prune(ctx context.Context, db *sql.DB, location string) {
	_, err := db.ExecContext(ctx, `
DELETE FROM weather
WHERE location = ?
  AND id NOT IN (
	SELECT id FROM weather
	WHERE location = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
  )`,
		location, location, s.maxHistory,
	)
	if err != nil {
		s.logger.Printf("ERROR: %v: pruning weather data for %s: %v", weather.ErrPersistence, location, err)
	}
}

// GetWeatherData returns the newest cached report for location, or nil when
// none exists or it cannot be read.
func (s *SQLiteStore) GetWeatherData(ctx context.Context, location string) *weather.Report {
	db := s.conn()
	if db == nil {
		return nil
	}

	var data string
	err := db.QueryRowContext(ctx, `
SELECT data FROM weather
WHERE location = ?
ORDER BY timestamp DESC, id DESC
LIMIT 1`,
		location,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logger.Printf("ERROR: %v: retrieving weather data for %s: %v", weather.ErrPersistence, location, err)
		return nil
	}

	var report weather.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		s.logger.Printf("ERROR: %v: decoding cached weather data for %s: %v", weather.ErrPersistence, location, err)
		return nil
	}
	return &report
}
