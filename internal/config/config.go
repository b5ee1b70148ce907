// Package config loads the server configuration from the environment, with
// an optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/njchilds90/mathcmd/internal/core"
	pkgredis "github.com/njchilds90/mathcmd/pkg/redis"
	"github.com/njchilds90/mathcmd/ratelimit"
)

type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Infrastructure
	Redis pkgredis.Config

	RateLimit RateLimitConfig
	Plot      PlotConfig
	Batch     BatchConfig
	HTTP      HTTPConfig
}

// RateLimitConfig covers the engine-wide window, the per-client bucket in
// front of the HTTP routes and the decision statistics sink.
type RateLimitConfig struct {
	WindowMaxRequests int           `envconfig:"RATE_WINDOW_MAX_REQUESTS" default:"30"`
	WindowSeconds     int           `envconfig:"RATE_WINDOW_SECONDS" default:"60"`
	ClientRPS         float64       `envconfig:"CLIENT_RATE_RPS" default:"5"`
	ClientBurst       int           `envconfig:"CLIENT_RATE_BURST" default:"10"`
	ClientEnabled     bool          `envconfig:"CLIENT_RATE_ENABLED" default:"true"`
	ClientCleanup     time.Duration `envconfig:"CLIENT_RATE_CLEANUP" default:"2m"`
	ConcurrencyMax    int           `envconfig:"CONCURRENCY_MAX" default:"50"`
	StatsEnabled      bool          `envconfig:"RATE_STATS_ENABLED" default:"false"`
	StatsPrefix       string        `envconfig:"RATE_STATS_PREFIX" default:"mathcmd:ratelimit"`
	StatsTTL          time.Duration `envconfig:"RATE_STATS_TTL" default:"24h"`
}

type PlotConfig struct {
	Min     float64 `envconfig:"PLOT_MIN" default:"-10"`
	Max     float64 `envconfig:"PLOT_MAX" default:"10"`
	Samples int     `envconfig:"PLOT_SAMPLES" default:"400"`
}

type BatchConfig struct {
	Workers     int `envconfig:"BATCH_WORKERS" default:"4"`
	MaxCommands int `envconfig:"BATCH_MAX_COMMANDS" default:"32"`
}

type HTTPConfig struct {
	MaxBodyBytes   int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"8388608"`
}

// Load reads .env when present, then the process environment.
func Load() (*AppConfig, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}
	return FromEnv()
}

func FromEnv() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.RateLimit.WindowMaxRequests <= 0 || c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("config: %w", ratelimit.ErrInvalidWindow)
	}
	if c.Plot.Samples < 2 || c.Plot.Max <= c.Plot.Min {
		return fmt.Errorf("config: invalid plot range [%g, %g] with %d samples", c.Plot.Min, c.Plot.Max, c.Plot.Samples)
	}
	if c.Batch.Workers <= 0 || c.Batch.MaxCommands <= 0 {
		return fmt.Errorf("config: batch workers and max commands must be positive")
	}
	if c.RateLimit.StatsEnabled && c.Redis.URL == "" {
		return fmt.Errorf("config: RATE_STATS_ENABLED needs %w", pkgredis.ErrNoURL)
	}
	return nil
}

func (c *AppConfig) Env() core.Environment {
	return core.ParseEnvironment(c.Environment)
}

func (c *AppConfig) Window() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}
