package cache

import (
	"time"

	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

const (
	// DefaultSuccessTTL applies to success outcomes.
	DefaultSuccessTTL = 24 * time.Hour

	// DefaultErrorTTL applies to every error outcome.
	DefaultErrorTTL = 5 * time.Minute
)

// TTLPolicy picks an entry lifetime by outcome.
type TTLPolicy struct {
	Success time.Duration
	Error   time.Duration
}

// DefaultTTLPolicy returns 24h for successes and 5m for errors.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Success: DefaultSuccessTTL,
		Error:   DefaultErrorTTL,
	}
}

// TTL returns how long resp may be served from cache.
func (p TTLPolicy) TTL(resp voucher.Response) time.Duration {
	if resp.Success() {
		return p.Success
	}
	return p.Error
}
