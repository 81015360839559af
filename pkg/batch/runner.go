package batch

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

var (
	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voucher_batch_size",
		Help:    "Number of items per batch redemption",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})

	batchCanceledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voucher_batch_canceled_items_total",
		Help: "Total batch items never started because the batch was canceled",
	})
)

// ErrTooManyItems is returned for batches larger than Config.MaxItems.
var ErrTooManyItems = errors.New("batch exceeds max items")

// Config holds batch runner configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel redemptions
	MaxConcurrency int
	// MaxItems is the largest accepted batch
	MaxItems int
}

// DefaultConfig returns safe default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		MaxItems:       50,
	}
}

// Redeemer is the single-item operation the runner fans out.
type Redeemer interface {
	Redeem(ctx context.Context, phoneNumber, voucherCode string) voucher.Response
}

// Request is one batch item.
type Request struct {
	PhoneNumber string `json:"phone_number"`
	VoucherCode string `json:"voucher_code"`
}

// Result is the outcome of one batch item.
type Result struct {
	Index    int
	Request  Request
	Response voucher.Response
}

// Runner redeems batches in parallel
type Runner struct {
	redeemer Redeemer
	config   Config
}

// NewRunner creates a new batch runner
func NewRunner(redeemer Redeemer, config Config) *Runner {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.MaxItems <= 0 {
		config.MaxItems = defaults.MaxItems
	}

	return &Runner{
		redeemer: redeemer,
		config:   config,
	}
}

// Config returns the effective configuration.
func (r *Runner) Config() Config {
	return r.config
}

// RedeemAll redeems every request and returns results in request order.
// When ctx is done before all items start, the remaining items get
// canceled outcomes and the context error is returned with the results.
func (r *Runner) RedeemAll(ctx context.Context, reqs []Request) ([]Result, error) {
	if len(reqs) > r.config.MaxItems {
		return nil, errors.Wrapf(ErrTooManyItems, "%d > %d", len(reqs), r.config.MaxItems)
	}
	if len(reqs) == 0 {
		return []Result{}, nil
	}

	start := time.Now()
	batchSize.Observe(float64(len(reqs)))

	results := make([]Result, len(reqs))
	started := make([]bool, len(reqs))

	queue := make(chan int, len(reqs))
	for i := range reqs {
		queue <- i
	}
	close(queue)

	workers := r.config.MaxConcurrency
	if workers > len(reqs) {
		workers = len(reqs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go r.worker(ctx, w, reqs, queue, results, started, &wg)
	}
	wg.Wait()

	canceled := 0
	for i, ok := range started {
		if ok {
			continue
		}
		canceled++
		results[i] = Result{
			Index:    i,
			Request:  reqs[i],
			Response: voucher.NewError(voucher.CodeNetworkError, "Network error occurred", ctx.Err()),
		}
	}

	logger := log.With().Str("component", "voucher-batch").Logger()
	if canceled > 0 {
		batchCanceledTotal.Add(float64(canceled))
		logger.Warn().
			Int("items", len(reqs)).
			Int("canceled", canceled).
			Dur("duration", time.Since(start)).
			Msg("Batch canceled - returning partial results")
		return results, errors.Wrapf(ctx.Err(), "batch canceled (%d/%d items not started)", canceled, len(reqs))
	}

	logger.Info().
		Int("items", len(reqs)).
		Int("workers", workers).
		Dur("duration", time.Since(start)).
		Msg("Batch complete")

	return results, nil
}

// worker processes items from the queue. Each index is written by exactly
// one worker.
func (r *Runner) worker(ctx context.Context, workerID int, reqs []Request, queue <-chan int, results []Result, started []bool, wg *sync.WaitGroup) {
	defer wg.Done()
	processed := 0

	for i := range queue {
		if ctx.Err() != nil {
			log.Debug().
				Int("worker_id", workerID).
				Int("items_processed", processed).
				Msg("Worker stopping (context cancelled)")
			return
		}

		started[i] = true
		req := reqs[i]
		results[i] = Result{
			Index:    i,
			Request:  req,
			Response: r.redeemer.Redeem(ctx, req.PhoneNumber, req.VoucherCode),
		}
		processed++
	}
}
