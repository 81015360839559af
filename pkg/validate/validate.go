// Package validate checks redemption input before anything leaves the
// process: Thai mobile numbers and voucher codes pasted as plain codes or
// as share links.
package validate

import (
	"regexp"
	"strings"
)

var (
	nonDigit      = regexp.MustCompile(`\D`)
	localMobile   = regexp.MustCompile(`^0[689]\d{8}$`)
	countryMobile = regexp.MustCompile(`^66(\d{9})$`)
	alphanumRun   = regexp.MustCompile(`[0-9A-Za-z]+`)
)

// voucherMarker precedes the code in share links such as
// https://gift.truemoney.com/campaign/?v=abc123.
const voucherMarker = "v="

// IsValidThaiPhoneNumber reports whether input is a Thai mobile number,
// either in local form (0812345678) or with the 66 country code
// (66812345678). Separators such as spaces and dashes are ignored.
func IsValidThaiPhoneNumber(input string) bool {
	digits := nonDigit.ReplaceAllString(input, "")

	if localMobile.MatchString(digits) {
		return true
	}

	m := countryMobile.FindStringSubmatch(digits)
	if m == nil {
		return false
	}
	return localMobile.MatchString("0" + m[1])
}

// VoucherCode extracts the voucher code from input. Input may be a bare
// code, a query string ("?v=abc123") or a full share link. The code is the
// first run of ASCII letters and digits in the segment between the first
// "v=" marker and the next one, or in the whole input when there is no
// marker. An empty result means no valid code.
func VoucherCode(input string) string {
	segment := input
	if _, after, found := strings.Cut(input, voucherMarker); found {
		segment, _, _ = strings.Cut(after, voucherMarker)
	}
	return alphanumRun.FindString(segment)
}
