package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/voucher-client/pkg/logging"
)

var envKeys = []string{
	"PORT", "SHUTDOWN_TIMEOUT",
	"UPSTREAM_BASE_URL", "USER_AGENT", "REQUEST_TIMEOUT", "DEDUPLICATE",
	"CACHE_BACKEND", "REDIS_URL", "SUCCESS_TTL", "ERROR_TTL", "SWEEP_INTERVAL",
	"BATCH_CONCURRENCY", "BATCH_MAX_ITEMS",
	"LOG_LEVEL", "LOG_PRETTY",
}

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "https://gift.truemoney.com", cfg.Upstream.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Upstream.RequestTimeout)
	assert.True(t, cfg.Upstream.Deduplicate)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.SuccessTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ErrorTTL)
	assert.Zero(t, cfg.Cache.SweepInterval)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrency)
	assert.Equal(t, 50, cfg.Batch.MaxItems)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("UPSTREAM_BASE_URL", "http://localhost:18080")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("DEDUPLICATE", "false")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://:secret@cache:6380/2")
	t.Setenv("SUCCESS_TTL", "1h")
	t.Setenv("ERROR_TTL", "30s")
	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("BATCH_CONCURRENCY", "8")
	t.Setenv("BATCH_MAX_ITEMS", "10")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://localhost:18080", cfg.Upstream.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Upstream.RequestTimeout)
	assert.False(t, cfg.Upstream.Deduplicate)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.SuccessTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.ErrorTTL)
	assert.Equal(t, time.Minute, cfg.Cache.SweepInterval)

	opts, err := cfg.Cache.RedisOptions()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	batchCfg := cfg.BatchConfig()
	assert.Equal(t, 8, batchCfg.MaxConcurrency)
	assert.Equal(t, 10, batchCfg.MaxItems)

	logCfg := cfg.LoggingConfig()
	assert.Equal(t, logging.LevelDebug, logCfg.Level)
	assert.True(t, logCfg.Pretty)

	clientCfg := cfg.ClientConfig()
	assert.Equal(t, "http://localhost:18080", clientCfg.BaseURL)
	assert.Equal(t, 3*time.Second, clientCfg.RequestTimeout)
	assert.False(t, clientCfg.DeduplicateInFlight)
	assert.Equal(t, time.Hour, clientCfg.TTL.Success)
	assert.Equal(t, 30*time.Second, clientCfg.TTL.Error)
}

func TestLoad_ParseError(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process env config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "test config", mutate: func(*Config) {}},
		{name: "non-numeric port", mutate: func(c *Config) { c.Server.Port = "http" }, errorMsg: "Port"},
		{name: "empty base url", mutate: func(c *Config) { c.Upstream.BaseURL = "" }, errorMsg: "BaseURL"},
		{name: "unknown backend", mutate: func(c *Config) { c.Cache.Backend = "memcached" }, errorMsg: "Backend"},
		{name: "zero timeout", mutate: func(c *Config) { c.Upstream.RequestTimeout = 0 }, errorMsg: "REQUEST_TIMEOUT"},
		{name: "zero success ttl", mutate: func(c *Config) { c.Cache.SuccessTTL = 0 }, errorMsg: "SUCCESS_TTL"},
		{name: "negative error ttl", mutate: func(c *Config) { c.Cache.ErrorTTL = -time.Minute }, errorMsg: "ERROR_TTL"},
		{name: "negative sweep", mutate: func(c *Config) { c.Cache.SweepInterval = -time.Second }, errorMsg: "SWEEP_INTERVAL"},
		{name: "zero shutdown timeout", mutate: func(c *Config) { c.Server.ShutdownTimeout = 0 }, errorMsg: "SHUTDOWN_TIMEOUT"},
		{name: "zero batch concurrency", mutate: func(c *Config) { c.Batch.MaxConcurrency = 0 }, errorMsg: "MaxConcurrency"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, errorMsg: "LOG_LEVEL"},
		{name: "redis backend with address", mutate: func(c *Config) { c.Cache.Backend = BackendRedis }},
		{
			name: "redis backend with bad url",
			mutate: func(c *Config) {
				c.Cache.Backend = BackendRedis
				c.Cache.RedisURL = "http://cache:6379"
			},
			errorMsg: "REDIS_URL",
		},
		{
			name: "redis backend without url",
			mutate: func(c *Config) {
				c.Cache.Backend = BackendRedis
				c.Cache.RedisURL = ""
			},
			errorMsg: "REDIS_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestRedisOptions_Address(t *testing.T) {
	opts, err := CacheConfig{RedisURL: "redis-host:6379"}.RedisOptions()
	require.NoError(t, err)
	assert.Equal(t, "redis-host:6379", opts.Addr)
}
