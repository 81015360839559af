package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/voucher-client/internal/config"
	"github.com/Sternrassler/voucher-client/internal/server"
	"github.com/Sternrassler/voucher-client/pkg/cache"
	"github.com/Sternrassler/voucher-client/pkg/client"
	"github.com/Sternrassler/voucher-client/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.LoggingConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, nil); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// app holds everything run wires together.
type app struct {
	handler http.Handler
	cleanup func()
}

// newApp builds the store, client and HTTP handler from cfg.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger := logging.NewLogger("voucher-proxy")

	var (
		store   cache.Store
		ready   server.Pinger
		cleanup func()
	)

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		opts, err := cfg.Cache.RedisOptions()
		if err != nil {
			return nil, err
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, errors.Wrapf(err, "connect to redis at %s", opts.Addr)
		}
		logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")

		redisStore := cache.NewRedisStore(redisClient)
		store, ready = redisStore, redisStore
		cleanup = func() { redisClient.Close() }

	default:
		memStore := cache.NewMemoryStore()
		stopSweeper := memStore.StartSweeper(ctx, cfg.Cache.SweepInterval)
		store = memStore
		cleanup = stopSweeper
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Store = store
	voucherClient, err := client.New(clientCfg)
	if err != nil {
		cleanup()
		return nil, errors.Wrap(err, "create voucher client")
	}

	return &app{
		handler: server.New(voucherClient, ready, logger, server.WithBatchConfig(cfg.BatchConfig())).Handler(),
		cleanup: func() {
			voucherClient.Close()
			cleanup()
		},
	}, nil
}

// run serves until ctx is done. A nil listener listens on cfg.Server.Port.
func run(ctx context.Context, cfg config.Config, ln net.Listener) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.cleanup()

	if ln == nil {
		ln, err = net.Listen("tcp", ":"+cfg.Server.Port)
		if err != nil {
			return errors.Wrap(err, "listen")
		}
	}

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", ln.Addr().String()).
			Str("upstream", cfg.Upstream.BaseURL).
			Str("cache_backend", cfg.Cache.Backend).
			Msg("Starting voucher proxy")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down voucher proxy")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
