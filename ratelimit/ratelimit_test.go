package ratelimit_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathcmd/internal/core"
	logx "github.com/njchilds90/mathcmd/pkg/logger"
	"github.com/njchilds90/mathcmd/ratelimit"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestWindow_AdmitsUpToMax(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	w, err := ratelimit.NewWindow(30, time.Minute, ratelimit.WithClock(clock.Now))
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		assert.True(t, w.Allow(), "call %d", i+1)
	}
	assert.False(t, w.Allow())
	assert.Equal(t, time.Minute, w.RetryAfter())
}

func TestWindow_RejectionsAreNotRecorded(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	w, err := ratelimit.NewWindow(2, 10*time.Second, ratelimit.WithClock(clock.Now))
	require.NoError(t, err)

	require.True(t, w.Allow())
	require.True(t, w.Allow())
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		assert.False(t, w.Allow())
	}
	// The two admissions at t0 expire at t0+10s regardless of rejected calls.
	clock.Advance(5 * time.Second)
	assert.True(t, w.Allow())
	assert.True(t, w.Allow())
	assert.False(t, w.Allow())
}

func TestWindow_Slides(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	w, err := ratelimit.NewWindow(2, time.Minute, ratelimit.WithClock(clock.Now))
	require.NoError(t, err)

	require.True(t, w.Allow())
	clock.Advance(30 * time.Second)
	require.True(t, w.Allow())
	assert.False(t, w.Allow())

	clock.Advance(30 * time.Second)
	assert.True(t, w.Allow(), "first admission has left the window")
	assert.False(t, w.Allow())
}

func TestWindow_Invalid(t *testing.T) {
	_, err := ratelimit.NewWindow(0, time.Minute)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidWindow)
	_, err = ratelimit.NewWindow(1, 0)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidWindow)
}

func TestWindow_Concurrent(t *testing.T) {
	w, err := ratelimit.NewWindow(50, time.Hour)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.Allow() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestMemoryStats(t *testing.T) {
	s := ratelimit.NewMemoryStats(ratelimit.WithTrackKeys(true))
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, ratelimit.StatsEvent{Key: "a", Allowed: true, Route: "engine"}))
	require.NoError(t, s.Record(ctx, ratelimit.StatsEvent{Key: "a", Allowed: false, Route: "engine"}))
	require.NoError(t, s.Record(ctx, ratelimit.StatsEvent{Key: "b", Allowed: true, Route: "POST /x"}))

	assert.Equal(t, ratelimit.Counters{Allowed: 2, Denied: 1}, s.Total())
	assert.Equal(t, ratelimit.Counters{Allowed: 1, Denied: 1}, s.ByRoute()["engine"])
	assert.Equal(t, ratelimit.Counters{Allowed: 1, Denied: 1}, s.ByKey()["a"])
}

func TestRedisStats(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := ratelimit.NewRedisStats(rdb,
		ratelimit.WithStatsPrefix("test:rl:"),
		ratelimit.WithStatsTTL(time.Hour),
		ratelimit.WithStatsTrackKeys(true),
	)
	ctx := context.Background()
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	require.NoError(t, s.Record(ctx, ratelimit.StatsEvent{Key: "ip:1.2.3.4", Allowed: true, Route: "engine", At: at}))
	require.NoError(t, s.Record(ctx, ratelimit.StatsEvent{Key: "ip:1.2.3.4", Allowed: false, Route: "engine", At: at}))

	total, err := s.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, ratelimit.Counters{Allowed: 1, Denied: 1}, total)

	assert.Equal(t, "1", mr.HGet("test:rl:minute:202603040506", "allowed"))
	assert.Equal(t, "1", mr.HGet("test:rl:route", "engine:denied"))
	assert.Equal(t, "1", mr.HGet("test:rl:key:ip:1.2.3.4", "allowed"))
	assert.Equal(t, time.Hour, mr.TTL("test:rl:minute:202603040506"))
}

func TestRedisStats_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	s := ratelimit.NewRedisStats(rdb)
	assert.Error(t, s.Record(context.Background(), ratelimit.StatsEvent{Allowed: true}))
}

func TestClientStore(t *testing.T) {
	s := ratelimit.NewClientStore(1, 2, ratelimit.WithIdleTTL(time.Nanosecond))

	assert.True(t, s.Allow("a"))
	assert.True(t, s.Allow("a"))
	assert.False(t, s.Allow("a"))
	assert.True(t, s.Allow("b"), "keys have independent buckets")
	assert.Equal(t, 2, s.Len())

	time.Sleep(time.Millisecond)
	s.Cleanup()
	assert.Equal(t, 0, s.Len())
}

func TestClientStore_Janitor(t *testing.T) {
	s := ratelimit.NewClientStore(1, 1,
		ratelimit.WithIdleTTL(time.Nanosecond),
		ratelimit.WithCleanupEvery(5*time.Millisecond),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx)

	s.Allow("a")
	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

type brokenStats struct{}

func (brokenStats) Record(context.Context, ratelimit.StatsEvent) error {
	return errors.New("redis down")
}

func TestMiddleware_StatsErrorIsLogged(t *testing.T) {
	saved := log.Logger
	t.Cleanup(func() { log.Logger = saved })
	var buf bytes.Buffer
	logx.Init(logx.LoggerOpts{Environment: core.Production, Output: &buf})

	mw := ratelimit.Middleware(ratelimit.Options{
		Store: ratelimit.NewClientStore(1, 1),
		Stats: brokenStats{},
	})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:1"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "redis down")
}

func TestMiddleware(t *testing.T) {
	stats := ratelimit.NewMemoryStats()
	mw := ratelimit.Middleware(ratelimit.Options{
		Store:               ratelimit.NewClientStore(1, 1),
		Stats:               stats,
		AddRateLimitHeaders: true,
		RetryAfter:          2 * time.Second,
	})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/process_command", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := do()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "2", second.Header().Get("Retry-After"))

	assert.Equal(t, ratelimit.Counters{Allowed: 1, Denied: 1}, stats.ByRoute()["POST /process_command"])
}

func TestDefaultKeyFunc(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:1234"
	req.Header.Set("X-Forwarded-For", "8.8.8.8, 10.0.0.1")

	assert.Equal(t, "ip:192.168.1.9", ratelimit.DefaultKeyFunc("", false)(req))
	assert.Equal(t, "ip:8.8.8.8", ratelimit.DefaultKeyFunc("", true)(req))

	req.Header.Set("X-Client-ID", "abc")
	assert.Equal(t, "hdr:abc", ratelimit.DefaultKeyFunc("X-Client-ID", true)(req))
}

func TestConcurrencyMiddleware(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	h := ratelimit.ConcurrencyMiddleware(1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	}))

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		done <- rec.Code
	}()
	<-entered

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
}
