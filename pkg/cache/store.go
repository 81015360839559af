package cache

import (
	"context"

	"github.com/cockroachdb/errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store holds redemption outcomes. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the live entry for key, or ErrCacheMiss when there is
	// none or it has expired.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Set stores entry under key, replacing any previous entry.
	Set(ctx context.Context, key Key, entry *Entry) error

	// Delete removes the entry for key.
	Delete(ctx context.Context, key Key) error
}
