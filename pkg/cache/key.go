package cache

// Key identifies a cached outcome.
type Key struct {
	// Mobile is the trimmed phone number as sent upstream
	Mobile string

	// VoucherHash is the extracted voucher code
	VoucherHash string
}

// String returns "<mobile>:<voucherHash>".
func (k Key) String() string {
	return k.Mobile + ":" + k.VoucherHash
}
