package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStats writes decision counters to Redis hashes:
//
//	<prefix>:total                 allowed / denied, never expires
//	<prefix>:minute:YYYYMMDDhhmm   per-minute buckets, expire after ttl
//	<prefix>:route                 "<route>:allowed" / "<route>:denied"
//	<prefix>:key:<key>             per-caller counters when key tracking is on
type RedisStats struct {
	rdb       redis.UniversalClient
	prefix    string
	ttl       time.Duration
	bucket    bool
	trackKeys bool
}

type RedisStatsOption func(*RedisStats)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStats) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStats) { s.ttl = d }
}

// WithMinuteBuckets toggles the per-minute series (on by default).
func WithMinuteBuckets(on bool) RedisStatsOption {
	return func(s *RedisStats) { s.bucket = on }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStats) { s.trackKeys = track }
}

func NewRedisStats(rdb redis.UniversalClient, opts ...RedisStatsOption) *RedisStats {
	s := &RedisStats{
		rdb:    rdb,
		prefix: "mathcmd:ratelimit",
		ttl:    24 * time.Hour,
		bucket: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStats) Record(ctx context.Context, ev StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if s.bucket {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if route := strings.TrimSpace(ev.Route); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
	}

	if s.trackKeys {
		if k := strings.TrimSpace(ev.Key); k != "" {
			keyKey := s.prefix + ":key:" + k
			pipe.HIncrBy(ctx, keyKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyKey, s.ttl)
			}
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ratelimit: record stats: %w", err)
	}
	return nil
}

// Total reads the cumulative counters back.
func (s *RedisStats) Total(ctx context.Context) (Counters, error) {
	vals, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return Counters{}, fmt.Errorf("ratelimit: read stats: %w", err)
	}
	var c Counters
	if _, err := fmt.Sscan(valueOr(vals["allowed"]), &c.Allowed); err != nil {
		return Counters{}, fmt.Errorf("ratelimit: parse allowed: %w", err)
	}
	if _, err := fmt.Sscan(valueOr(vals["denied"]), &c.Denied); err != nil {
		return Counters{}, fmt.Errorf("ratelimit: parse denied: %w", err)
	}
	return c, nil
}

func valueOr(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
