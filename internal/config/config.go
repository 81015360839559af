// Package config loads voucher-proxy settings from the environment.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/voucher-client/pkg/batch"
	"github.com/Sternrassler/voucher-client/pkg/cache"
	"github.com/Sternrassler/voucher-client/pkg/client"
	"github.com/Sternrassler/voucher-client/pkg/logging"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full voucher-proxy configuration.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Cache    CacheConfig
	Batch    BatchConfig
	Log      LogConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// UpstreamConfig points the client at the redemption host.
type UpstreamConfig struct {
	BaseURL        string        `envconfig:"UPSTREAM_BASE_URL" default:"https://gift.truemoney.com" validate:"required,url"`
	UserAgent      string        `envconfig:"USER_AGENT" default:"voucher-client/0.1.0"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	Deduplicate    bool          `envconfig:"DEDUPLICATE" default:"true"`
}

// CacheConfig selects the outcome store and its TTLs.
type CacheConfig struct {
	Backend       string        `envconfig:"CACHE_BACKEND" default:"memory" validate:"oneof=memory redis"`
	RedisURL      string        `envconfig:"REDIS_URL" default:"localhost:6379"`
	SuccessTTL    time.Duration `envconfig:"SUCCESS_TTL" default:"24h"`
	ErrorTTL      time.Duration `envconfig:"ERROR_TTL" default:"5m"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"0"`
}

// BatchConfig bounds the batch redemption route.
type BatchConfig struct {
	MaxConcurrency int `envconfig:"BATCH_CONCURRENCY" default:"4" validate:"gt=0"`
	MaxItems       int `envconfig:"BATCH_MAX_ITEMS" default:"50" validate:"gt=0"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to process env config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field formats and value ranges.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	if c.Upstream.RequestTimeout <= 0 {
		return errors.Newf("REQUEST_TIMEOUT must be > 0 (got %s)", c.Upstream.RequestTimeout)
	}
	if c.Cache.SuccessTTL <= 0 {
		return errors.Newf("SUCCESS_TTL must be > 0 (got %s)", c.Cache.SuccessTTL)
	}
	if c.Cache.ErrorTTL <= 0 {
		return errors.Newf("ERROR_TTL must be > 0 (got %s)", c.Cache.ErrorTTL)
	}
	if c.Cache.SweepInterval < 0 {
		return errors.Newf("SWEEP_INTERVAL must be >= 0 (got %s)", c.Cache.SweepInterval)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.Newf("SHUTDOWN_TIMEOUT must be > 0 (got %s)", c.Server.ShutdownTimeout)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}

	if c.Cache.Backend == BackendRedis {
		if _, err := c.Cache.RedisOptions(); err != nil {
			return err
		}
	}

	return nil
}

// RedisOptions accepts a redis:// URL or a bare host:port address.
func (c CacheConfig) RedisOptions() (*redis.Options, error) {
	if strings.Contains(c.RedisURL, "://") {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, errors.Wrap(err, "REDIS_URL")
		}
		return opts, nil
	}
	if c.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required for the redis backend")
	}
	return &redis.Options{Addr: c.RedisURL}, nil
}

// TTLPolicy returns the configured cache lifetimes.
func (c CacheConfig) TTLPolicy() cache.TTLPolicy {
	return cache.TTLPolicy{Success: c.SuccessTTL, Error: c.ErrorTTL}
}

// ClientConfig maps the settings onto a client configuration. The store is
// left for the caller to build.
func (c Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig()
	cfg.BaseURL = c.Upstream.BaseURL
	cfg.UserAgent = c.Upstream.UserAgent
	cfg.RequestTimeout = c.Upstream.RequestTimeout
	cfg.DeduplicateInFlight = c.Upstream.Deduplicate
	cfg.TTL = c.Cache.TTLPolicy()
	return cfg
}

// BatchConfig maps the settings onto a batch runner configuration.
func (c Config) BatchConfig() batch.Config {
	return batch.Config{
		MaxConcurrency: c.Batch.MaxConcurrency,
		MaxItems:       c.Batch.MaxItems,
	}
}

// LoggingConfig maps the settings onto a logging configuration.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	level, _ := logging.ParseLevel(c.Log.Level)
	if level != "" {
		cfg.Level = level
	}
	cfg.Pretty = c.Log.Pretty
	cfg.Service = "voucher-proxy"
	return cfg
}

// NewTestConfig returns a valid configuration for tests.
func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8889",
			ShutdownTimeout: time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:        "http://localhost:18080",
			UserAgent:      "voucher-client-test/1.0",
			RequestTimeout: 2 * time.Second,
			Deduplicate:    true,
		},
		Cache: CacheConfig{
			Backend:    BackendMemory,
			RedisURL:   "localhost:6379",
			SuccessTTL: cache.DefaultSuccessTTL,
			ErrorTTL:   cache.DefaultErrorTTL,
		},
		Batch: BatchConfig{
			MaxConcurrency: 4,
			MaxItems:       50,
		},
		Log: LogConfig{
			Level: "error",
		},
	}
}
