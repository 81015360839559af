// Package cache stores redemption outcomes per (mobile, voucher) pair.
//
// Entries carry their own expiry. Success outcomes live long (24h by
// default) because a redeemed voucher stays redeemed; error outcomes live
// short (5m) so transient upstream failures are retried soon.
//
// Two stores implement Store:
//
//   - MemoryStore keeps entries in a process-local map. Expiry is lazy: an
//     expired entry reads as a miss but stays in the map until Sweep runs.
//     Without StartSweeper the map grows with every distinct key.
//   - RedisStore keeps JSON-encoded entries in Redis and lets Redis expire
//     them, so several processes share one cache.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//	policy := cache.DefaultTTLPolicy()
//
//	key := cache.Key{Mobile: "0812345678", VoucherHash: "abc123"}
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// call upstream, then
//		_ = store.Set(ctx, key, cache.NewEntry(resp, policy.TTL(resp), time.Now()))
//	}
//
// # Active eviction
//
//	stop := store.StartSweeper(ctx, time.Minute)
//	defer stop()
//
// # Metrics
//
//   - voucher_cache_hits_total{layer} - Cache hits
//   - voucher_cache_misses_total{layer} - Cache misses (absent or expired)
//   - voucher_cache_entries{layer} - Entries held by the memory store
//   - voucher_cache_evictions_total{layer} - Entries removed by Sweep
//   - voucher_cache_errors_total{operation} - Store operation errors
package cache
