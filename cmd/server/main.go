// Command server exposes the math command engine over HTTP.
//
//	POST /process_command  {"text": "divide 10 by 2"}
//	POST /process_batch    {"commands": ["1 + 1", "integrate 2x"]}
//	POST /upload_image     multipart field "image"
//	GET  /units            supported unit conversions
//	GET  /health           liveness
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/njchilds90/mathcmd/engine"
	"github.com/njchilds90/mathcmd/internal/config"
	errx "github.com/njchilds90/mathcmd/internal/core/error"
	logx "github.com/njchilds90/mathcmd/pkg/logger"
	"github.com/njchilds90/mathcmd/plot"
	"github.com/njchilds90/mathcmd/ratelimit"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides LISTEN_ADDR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("load config")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Env()})
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, closeStats := buildStats(ctx, cfg)
	defer closeStats()

	window, err := ratelimit.NewWindow(cfg.RateLimit.WindowMaxRequests, cfg.Window())
	if err != nil {
		logx.Fatal().Err(err).Msg("rate window")
	}
	eng := engine.New(
		engine.WithWindow(window),
		engine.WithStats(stats),
		engine.WithPlotter(plot.NewSampler(cfg.Plot.Min, cfg.Plot.Max, cfg.Plot.Samples)),
	)
	batch := engine.NewBatchRunner(eng, cfg.Batch.Workers, cfg.Batch.MaxCommands)

	mws := []mux.MiddlewareFunc{ratelimit.ConcurrencyMiddleware(cfg.RateLimit.ConcurrencyMax)}
	if cfg.RateLimit.ClientEnabled {
		clients := ratelimit.NewClientStore(cfg.RateLimit.ClientRPS, cfg.RateLimit.ClientBurst,
			ratelimit.WithCleanupEvery(cfg.RateLimit.ClientCleanup))
		clients.StartJanitor(ctx)
		mws = append(mws, ratelimit.Middleware(ratelimit.Options{
			Store:               clients,
			Stats:               stats,
			AddRateLimitHeaders: true,
			OnReject: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusTooManyRequests, engine.Response{
					Speech:    "Too many requests. Please slow down.",
					Throttled: true,
				})
			},
		}))
	}
	srv := NewServer(eng, batch, cfg.HTTP, mws...)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logx.Error().Err(err).Msg("shutdown")
		}
	}()

	logx.Info().Str("addr", cfg.ListenAddr).Str("env", cfg.Env().String()).Msg("mathcmd server listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Fatal().Err(err).Msg("listen")
	}
	eng.Flush()
}

// buildStats picks the decision statistics sink: Redis when enabled and
// reachable, otherwise in memory.
func buildStats(ctx context.Context, cfg *config.AppConfig) (ratelimit.StatsStore, func()) {
	if !cfg.RateLimit.StatsEnabled {
		return ratelimit.NewMemoryStats(), func() {}
	}
	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Warn().Err(errx.WrapRedis(err)).Msg("rate stats fall back to memory")
		return ratelimit.NewMemoryStats(), func() {}
	}
	store := ratelimit.NewRedisStats(rdb,
		ratelimit.WithStatsPrefix(cfg.RateLimit.StatsPrefix),
		ratelimit.WithStatsTTL(cfg.RateLimit.StatsTTL),
	)
	return store, func() { _ = rdb.Close() }
}
