package ratelimit

import (
	"context"
	"sync"
	"time"
)

// StatsEvent is one admission decision. Route is free-form ("POST /process_command",
// "engine"); Key identifies the caller when per-key tracking is enabled.
type StatsEvent struct {
	Key     string
	Allowed bool
	Route   string
	At      time.Time
}

// StatsStore persists decision counters. Callers treat errors as best-effort
// and never fail a request because of them.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

type Counters struct {
	Allowed int64
	Denied  int64
}

func (c *Counters) add(allowed bool) {
	if allowed {
		c.Allowed++
	} else {
		c.Denied++
	}
}

// MemoryStats keeps counters in process. It never expires anything.
type MemoryStats struct {
	mu        sync.Mutex
	total     Counters
	byRoute   map[string]Counters
	byKey     map[string]Counters
	trackKeys bool
}

type MemoryStatsOption func(*MemoryStats)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStats) { s.trackKeys = track }
}

func NewMemoryStats(opts ...MemoryStatsOption) *MemoryStats {
	s := &MemoryStats{
		byRoute: make(map[string]Counters),
		byKey:   make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStats) Record(_ context.Context, ev StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Allowed)
	c := s.byRoute[ev.Route]
	c.add(ev.Allowed)
	s.byRoute[ev.Route] = c
	if s.trackKeys && ev.Key != "" {
		k := s.byKey[ev.Key]
		k.add(ev.Allowed)
		s.byKey[ev.Key] = k
	}
	return nil
}

func (s *MemoryStats) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStats) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

func (s *MemoryStats) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}

// NopStats discards every event.
type NopStats struct{}

func (NopStats) Record(context.Context, StatsEvent) error { return nil }
