package ratelimit

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	logx "github.com/njchilds90/mathcmd/pkg/logger"
)

// KeyFunc extracts the caller key from a request.
type KeyFunc func(r *http.Request) string

type Options struct {
	Store *ClientStore
	Stats StatsStore

	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool

	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool

	// OnReject writes the rejection status and body. Defaults to a
	// plain-text RejectStatus response.
	OnReject http.HandlerFunc
}

// Middleware applies a per-client token bucket in front of next.
func Middleware(opts Options) func(http.Handler) http.Handler {
	if opts.Store == nil {
		panic("ratelimit: Options.Store is required")
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.OnReject == nil {
		opts.OnReject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			allowed := opts.Store.Allow(key)

			if opts.Stats != nil {
				err := opts.Stats.Record(context.WithoutCancel(r.Context()), StatsEvent{
					Key:     key,
					Allowed: allowed,
					Route:   r.Method + " " + r.URL.Path,
					At:      time.Now(),
				})
				if err != nil {
					logx.Warn().Err(err).Str("key", key).Msg("record client rate stats")
				}
			}

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(opts.Store.RPS(), 'f', -1, 64))
				w.Header().Set("X-RateLimit-Burst", strconv.Itoa(opts.Store.Burst()))
			}

			if !allowed {
				secs := int(math.Ceil(opts.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				opts.OnReject(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultKeyFunc keys on headerName when present, then X-Forwarded-For when
// trusted, then the remote IP.
func DefaultKeyFunc(headerName string, trustXFF bool) KeyFunc {
	headerName = strings.TrimSpace(headerName)
	return func(r *http.Request) string {
		if headerName != "" {
			if v := strings.TrimSpace(r.Header.Get(headerName)); v != "" {
				return "hdr:" + v
			}
		}
		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return "ip:" + ip
				}
			}
		}
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return "ip:" + host
		}
		if r.RemoteAddr != "" {
			return "ip:" + r.RemoteAddr
		}
		return "ip:unknown"
	}
}

// ConcurrencyMiddleware caps in-flight requests at max and answers 503 above it.
func ConcurrencyMiddleware(max int) func(http.Handler) http.Handler {
	if max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	sem := make(chan struct{}, max)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				next.ServeHTTP(w, r)
			default:
				http.Error(w, "server busy", http.StatusServiceUnavailable)
			}
		})
	}
}
