package cache

import (
	"time"

	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

// Entry is a cached redemption outcome. Entries are not modified after
// they are stored; a new outcome for the same key replaces the entry.
type Entry struct {
	// Response is the outcome returned to callers on a hit
	Response voucher.Response `json:"response"`

	// StatusCode is the upstream HTTP status behind Response
	StatusCode int `json:"status_code"`

	// Upstream is set when Response carries the upstream body verbatim
	Upstream bool `json:"upstream"`

	// Expires is when the entry stops being served
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was stored
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry wraps resp in an entry that expires ttl after now.
func NewEntry(resp voucher.Response, ttl time.Duration, now time.Time) *Entry {
	return &Entry{
		Response:   resp,
		StatusCode: resp.HTTPStatus,
		Upstream:   resp.Raw() != nil,
		Expires:    now.Add(ttl),
		CachedAt:   now,
	}
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return e.ExpiredAt(time.Now())
}

// ExpiredAt reports whether the entry is expired at now. An entry is live
// only while now is strictly before Expires.
func (e *Entry) ExpiredAt(now time.Time) bool {
	return !now.Before(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
