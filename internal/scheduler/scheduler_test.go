package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) GetWeather(context.Context) {
	r.calls.Add(1)
}

func TestSchedulerDisabled(t *testing.T) {
	r := &countingRefresher{}
	s := New(0, r)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if n := r.calls.Load(); n != 0 {
		t.Fatalf("expected no refresh, got %d", n)
	}
}

func TestSchedulerRefreshes(t *testing.T) {
	r := &countingRefresher{}
	s := New(time.Second, r)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for r.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if r.calls.Load() == 0 {
		t.Fatalf("expected at least one refresh")
	}
}
