package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

type cachedPayload struct {
	data      string
	timestamp int64 // epoch millis
	seq       int64
}

// MemoryStore is a concurrency-safe in-memory implementation of the weather
// cache and preference contracts. Nothing survives a restart.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: payloads in insertion order
	history map[string][]cachedPayload
	prefs   map[string]string
	seq     int64

	maxHistory int // max payloads per location (0 = unlimited)
	logger     weather.Logger
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, logger weather.Logger) *MemoryStore {
	if logger == nil {
		logger = log.Default()
	}
	return &MemoryStore{
		history:    make(map[string][]cachedPayload),
		prefs:      make(map[string]string),
		maxHistory: maxHistory,
		logger:     logger,
		now:        time.Now,
	}
}

// SaveWeatherData appends a payload for a location and enforces retention.
func (s *MemoryStore) SaveWeatherData(_ context.Context, location, data string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	entries := append(s.history[location], cachedPayload{
		data:      data,
		timestamp: s.now().UnixMilli(),
		seq:       s.seq,
	})

	if s.maxHistory > 0 && len(entries) > s.maxHistory {
		entries = keepNewest(entries, s.maxHistory)
	}
	s.history[location] = entries
}

// GetWeatherData returns the newest payload by timestamp for a location.
func (s *MemoryStore) GetWeatherData(_ context.Context, location string) *weather.Report {
	s.mu.RLock()
	entries := s.history[location]
	if len(entries) == 0 {
		s.mu.RUnlock()
		return nil
	}
	newest := entries[newestIndex(entries)]
	s.mu.RUnlock()

	var report weather.Report
	if err := json.Unmarshal([]byte(newest.data), &report); err != nil {
		s.logger.Printf("ERROR: %v: decoding cached weather data for %s: %v", weather.ErrPersistence, location, err)
		return nil
	}
	return &report
}

// Set upserts a preference.
func (s *MemoryStore) Set(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[key] = value
}

// Get returns a preference.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.prefs[key]
	return v, ok
}

func newer(a, b cachedPayload) bool {
	if a.timestamp != b.timestamp {
		return a.timestamp > b.timestamp
	}
	return a.seq > b.seq
}

func newestIndex(entries []cachedPayload) int {
	best := 0
	for i := 1; i < len(entries); i++ {
		if newer(entries[i], entries[best]) {
			best = i
		}
	}
	return best
}

// keepNewest drops the oldest entries until n remain, preserving order.
func keepNewest(entries []cachedPayload, n int) []cachedPayload {
	for len(entries) > n {
		oldest := 0
		for i := 1; i < len(entries); i++ {
			if newer(entries[oldest], entries[i]) {
				oldest = i
			}
		}
		entries = append(entries[:oldest:oldest], entries[oldest+1:]...)
	}
	return entries
}
