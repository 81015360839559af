// Package batch redeems many (phone, voucher) pairs with a bounded worker
// pool.
//
// Example usage:
//
//	runner := batch.NewRunner(voucherClient, batch.DefaultConfig())
//	results, err := runner.RedeemAll(ctx, []batch.Request{
//		{PhoneNumber: "0812345678", VoucherCode: "abc123"},
//		{PhoneNumber: "0898765432", VoucherCode: "abc123"},
//	})
//
// The runner:
//   - Rejects batches larger than MaxItems
//   - Spawns a worker pool (default 4 workers)
//   - Returns one result per request, in request order
//   - Stops starting new items once ctx is done; items never started get a
//     NETWORK_ERROR outcome carrying the context error
package batch
