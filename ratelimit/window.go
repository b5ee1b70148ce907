// Package ratelimit holds the admission gates used by the command engine and
// its HTTP front end: a process-wide sliding window, a per-client token
// bucket, a concurrency cap, and best-effort decision statistics.
package ratelimit

import (
	"errors"
	"sync"
	"time"
)

const (
	DefaultMaxRequests = 30
	DefaultPeriod      = 60 * time.Second
)

var ErrInvalidWindow = errors.New("ratelimit: max requests and period must be positive")

// Window is a sliding-window limiter over all callers: at most max admissions
// in any trailing period. Safe for concurrent use.
type Window struct {
	mu     sync.Mutex
	max    int
	period time.Duration
	now    func() time.Time
	stamps []time.Time
}

type WindowOption func(*Window)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) WindowOption {
	return func(w *Window) { w.now = now }
}

func NewWindow(maxRequests int, period time.Duration, opts ...WindowOption) (*Window, error) {
	if maxRequests <= 0 || period <= 0 {
		return nil, ErrInvalidWindow
	}
	w := &Window{
		max:    maxRequests,
		period: period,
		now:    time.Now,
		stamps: make([]time.Time, 0, maxRequests),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// DefaultWindow admits 30 requests per 60 seconds.
func DefaultWindow() *Window {
	w, _ := NewWindow(DefaultMaxRequests, DefaultPeriod)
	return w
}

// Allow prunes timestamps older than the period, then admits and records the
// call if fewer than max remain. A rejected call is not recorded.
func (w *Window) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)
	if len(w.stamps) >= w.max {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

// RetryAfter reports how long until the oldest recorded admission leaves the
// window. Zero means a call would be admitted now.
func (w *Window) RetryAfter() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)
	if len(w.stamps) < w.max {
		return 0
	}
	return w.stamps[0].Add(w.period).Sub(now)
}

func (w *Window) Max() int              { return w.max }
func (w *Window) Period() time.Duration { return w.period }

func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.period)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}
