// Package server exposes voucher redemption over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/voucher-client/pkg/batch"
	"github.com/Sternrassler/voucher-client/pkg/metrics"
	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

// Redeemer redeems a voucher into a phone number.
type Redeemer interface {
	Redeem(ctx context.Context, phoneNumber, voucherCode string) voucher.Response
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server routes proxy requests to a Redeemer.
type Server struct {
	redeemer Redeemer
	batch    *batch.Runner
	ready    Pinger
	logger   zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithBatchConfig sets the limits of the batch route.
func WithBatchConfig(cfg batch.Config) Option {
	return func(s *Server) {
		s.batch = batch.NewRunner(s.redeemer, cfg)
	}
}

// New creates a server. ready may be nil when there is nothing to probe.
func New(redeemer Redeemer, ready Pinger, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		redeemer: redeemer,
		batch:    batch.NewRunner(redeemer, batch.DefaultConfig()),
		ready:    ready,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+RedeemPath, s.redeemJSON)
	mux.HandleFunc("GET "+RedeemPath, s.redeemQuery)
	mux.HandleFunc("POST "+BatchPath, s.redeemBatch)
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", s.readyHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	var h http.Handler = mux
	h = Logging(s.logger)(h)
	h = RequestID(s.logger)(h)
	h = Recovery(s.logger)(h)
	return h
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ping(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
