// Package client redeems gift vouchers against the upstream redemption
// endpoint, with input validation, response normalization and caching.
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/Sternrassler/voucher-client/pkg/cache"
	"github.com/Sternrassler/voucher-client/pkg/payload"
	"github.com/Sternrassler/voucher-client/pkg/validate"
	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

// Prometheus metrics for redemption operations.
var (
	redeemTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voucher_redeem_total",
		Help: "Total redemption outcomes by status code",
	}, []string{"code"})

	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voucher_upstream_requests_total",
		Help: "Total upstream redemption requests by HTTP status",
	}, []string{"status"})

	upstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voucher_upstream_duration_seconds",
		Help:    "Upstream redemption request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voucher_errors_total",
		Help: "Total redemption failures by kind",
	}, []string{"kind"})

	inflightSharedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voucher_inflight_shared_total",
		Help: "Total redemptions served by joining an in-flight upstream call",
	})
)

// DefaultBaseURL is the production redemption host.
const DefaultBaseURL = "https://gift.truemoney.com"

// Client redeems vouchers. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	store      cache.Store
	config     Config
	logger     zerolog.Logger
	inflight   singleflight.Group
	now        func() time.Time
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the scheme and host of the redemption endpoint
	BaseURL string

	// UserAgent header sent upstream (optional)
	UserAgent string

	// RequestTimeout bounds each upstream call
	RequestTimeout time.Duration

	// Store holds cached outcomes. Nil means a fresh MemoryStore.
	Store cache.Store

	// TTL picks cache lifetimes by outcome
	TTL cache.TTLPolicy

	// DeduplicateInFlight makes concurrent calls for the same key share one
	// upstream request
	DeduplicateInFlight bool
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		UserAgent:           "voucher-client/0.1.0",
		RequestTimeout:      15 * time.Second,
		TTL:                 cache.DefaultTTLPolicy(),
		DeduplicateInFlight: true,
	}
}

// New creates a new redemption client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Newf("base url must be http or https (got %q)", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, errors.Newf("base url must include a host (got %q)", cfg.BaseURL)
	}

	if cfg.RequestTimeout <= 0 {
		return nil, errors.Newf("request_timeout must be > 0 (got %s)", cfg.RequestTimeout)
	}

	if cfg.TTL.Success <= 0 || cfg.TTL.Error <= 0 {
		return nil, errors.Newf("cache ttls must be > 0 (got success=%s error=%s)", cfg.TTL.Success, cfg.TTL.Error)
	}

	if cfg.Store == nil {
		cfg.Store = cache.NewMemoryStore()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		store:  cfg.Store,
		config: cfg,
		logger: log.With().Str("component", "voucher-client").Logger(),
		now:    time.Now,
	}, nil
}

// Redeem validates the input, serves a cached outcome when one is live, and
// otherwise calls upstream and caches the result. It always returns an
// outcome; failures are error outcomes with a status code.
func (c *Client) Redeem(ctx context.Context, phoneNumber, voucherCode string) voucher.Response {
	mobile := strings.TrimSpace(phoneNumber)
	code := validate.VoucherCode(voucherCode)

	if !validate.IsValidThaiPhoneNumber(mobile) {
		return c.finish(errInvalidPhoneNumber.Response())
	}
	if code == "" {
		return c.finish(errInvalidVoucherCode.Response())
	}

	key := cache.Key{Mobile: mobile, VoucherHash: code}
	logger := c.logger.With().Str("key", key.String()).Logger()

	entry, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		logger.Debug().Bool("cache_hit", true).Msg("Serving cached outcome")
		return c.finish(entry.Response)
	case !errors.Is(err, cache.ErrCacheMiss):
		logger.Warn().Err(err).Msg("Cache get error")
	}

	if !c.config.DeduplicateInFlight {
		return c.finish(c.fetchAndStore(ctx, key, logger))
	}

	// The shared call must not die with whichever caller started it.
	shared := context.WithoutCancel(ctx)
	v, _, wasShared := c.inflight.Do(key.String(), func() (interface{}, error) {
		return c.fetchAndStore(shared, key, logger), nil
	})
	if wasShared {
		inflightSharedTotal.Inc()
	}

	return c.finish(v.(voucher.Response))
}

// fetchAndStore calls upstream and caches a classified outcome with its TTL.
// Failures raised on the way (transport, HTTP status, decode) are returned
// uncached so the next call reaches upstream again.
func (c *Client) fetchAndStore(ctx context.Context, key cache.Key, logger zerolog.Logger) voucher.Response {
	resp, err := c.fetch(ctx, key)
	if err != nil {
		return c.toResponse(err, logger)
	}

	ttl := c.config.TTL.TTL(resp)
	if err := c.store.Set(ctx, key, cache.NewEntry(resp, ttl, c.now())); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache outcome")
	} else {
		logger.Debug().Dur("ttl", ttl).Str("code", resp.Status.Code).Msg("Cached outcome")
	}

	return resp
}

// fetch performs the upstream call and classifies the response.
func (c *Client) fetch(ctx context.Context, key cache.Key) (voucher.Response, error) {
	req, err := payload.NewRequest(ctx, c.config.BaseURL, payload.New(key.Mobile, key.VoucherHash))
	if err != nil {
		return voucher.Response{}, errors.Wrap(err, "build redeem request")
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("url", req.URL.String()).
		Str("method", req.Method).
		Msg("Executing redeem request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	upstreamDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		upstreamRequestsTotal.WithLabelValues("network_error").Inc()
		return voucher.Response{}, networkError(err)
	}
	upstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	return classify(resp)
}

// toResponse converts a failure into an error outcome. Failures that were
// not classified are logged and reported as network errors.
func (c *Client) toResponse(err error, logger zerolog.Logger) voucher.Response {
	var redeemErr *RedeemError
	if !errors.As(err, &redeemErr) {
		logger.Error().Err(err).Msg("Unexpected redeem failure")
		redeemErr = &RedeemError{
			Kind:    KindUnknown,
			Code:    voucher.CodeNetworkError,
			Message: "Network error occurred",
			Err:     err,
		}
	} else {
		logger.Warn().
			Err(err).
			Str("error_kind", string(redeemErr.Kind)).
			Str("code", redeemErr.Code).
			Msg("Redeem request failed")
	}

	errorsTotal.WithLabelValues(string(redeemErr.Kind)).Inc()

	resp := redeemErr.Response()
	if redeemErr.Kind == KindUnknown {
		resp.Error = err.Error()
	}
	return resp
}

// finish records the outcome.
func (c *Client) finish(resp voucher.Response) voucher.Response {
	redeemTotal.WithLabelValues(resp.Status.Code).Inc()
	return resp
}

// Close releases idle upstream connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetStore returns the cache store (for testing).
func (c *Client) GetStore() cache.Store {
	return c.store
}
