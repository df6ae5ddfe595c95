package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS weather (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	location TEXT,
	data TEXT,
	timestamp INTEGER
);

CREATE INDEX IF NOT EXISTS idx_weather_location_timestamp ON weather (location, timestamp);

CREATE TABLE IF NOT EXISTS preferences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	key TEXT UNIQUE,
	value TEXT
);
`

// SQLiteStore persists the weather cache and preferences in one SQLite file.
// Methods called before Initialize succeeds are no-ops.
type SQLiteStore struct {
	path       string
	maxHistory int // rows kept per location (0 = unlimited)
	logger     weather.Logger
	now        func() time.Time

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore creates an uninitialized store for path.
func NewSQLiteStore(path string, maxHistory int, logger weather.Logger) *SQLiteStore {
	if logger == nil {
		logger = log.Default()
	}
	return &SQLiteStore{
		path:       path,
		maxHistory: maxHistory,
		logger:     logger,
		now:        time.Now,
	}
}

// Initialize opens the database and creates missing tables. It is safe to
// call more than once. The error is also logged.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := s.open(ctx)
	if err != nil {
		s.logger.Printf("ERROR: creating database: %v", err)
		return fmt.Errorf("%w: %v", weather.ErrPersistence, err)
	}
	s.db = db

	s.logger.Printf("INFO: database and tables created at %s", s.path)
	return nil
}

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	path := strings.TrimSpace(s.path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	if path != ":memory:" {
		path = filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One shared connection; an in-memory database would otherwise be
	// per-connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// Close releases the connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) conn() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}
