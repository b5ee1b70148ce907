package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientStore hands out one token bucket per caller key and forgets keys that
// stay idle longer than the idle TTL.
type ClientStore struct {
	mu           sync.Mutex
	entries      map[string]*clientEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type clientEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type ClientStoreOption func(*ClientStore)

func WithIdleTTL(d time.Duration) ClientStoreOption {
	return func(s *ClientStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) ClientStoreOption {
	return func(s *ClientStore) { s.cleanupEvery = d }
}

func NewClientStore(rps float64, burst int, opts ...ClientStoreOption) *ClientStore {
	s := &ClientStore{
		entries:      make(map[string]*clientEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ClientStore) RPS() float64 { return float64(s.rps) }
func (s *ClientStore) Burst() int   { return s.burst }

// Allow spends one token from key's bucket.
func (s *ClientStore) Allow(key string) bool { return s.get(key).Allow() }

func (s *ClientStore) get(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &clientEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *ClientStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops keys idle for longer than the idle TTL.
func (s *ClientStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is done.
func (s *ClientStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}
	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
