package client

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

// ErrorKind classifies why a redemption did not produce an upstream body.
type ErrorKind string

const (
	// KindValidation represents rejected phone numbers or voucher codes.
	KindValidation ErrorKind = "validation"

	// KindUpstream represents non-2xx responses without a usable error body.
	KindUpstream ErrorKind = "upstream"

	// KindNetwork represents transport failures: refused connections,
	// timeouts, truncated bodies.
	KindNetwork ErrorKind = "network"

	// KindDecode represents malformed JSON on a 2xx response.
	KindDecode ErrorKind = "decode"

	// KindUnknown represents failures nothing else classified.
	KindUnknown ErrorKind = "unknown"
)

// RedeemError is a failure that becomes an error outcome.
type RedeemError struct {
	Kind       ErrorKind
	Code       string
	Message    string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *RedeemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("redeem %s error (%s): %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("redeem %s error (%s): %s", e.Kind, e.Code, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RedeemError) Unwrap() error {
	return e.Err
}

// Response converts e into an error outcome. Only network and decode
// failures carry the underlying cause.
func (e *RedeemError) Response() voucher.Response {
	var cause error
	if e.Kind == KindNetwork || e.Kind == KindDecode {
		cause = e.Err
	}
	resp := voucher.NewError(e.Code, e.Message, cause)
	resp.HTTPStatus = e.StatusCode
	return resp
}

var (
	errInvalidPhoneNumber = &RedeemError{
		Kind:    KindValidation,
		Code:    voucher.CodeInvalidPhoneNumber,
		Message: "Invalid phone number format",
	}

	errInvalidVoucherCode = &RedeemError{
		Kind:    KindValidation,
		Code:    voucher.CodeInvalidVoucherCode,
		Message: "Invalid voucher code",
	}
)

func networkError(err error) *RedeemError {
	return &RedeemError{
		Kind:    KindNetwork,
		Code:    voucher.CodeNetworkError,
		Message: "Network error occurred",
		Err:     err,
	}
}

func decodeError(statusCode int, err error) *RedeemError {
	return &RedeemError{
		Kind:       KindDecode,
		Code:       voucher.CodeInvalidJSONResponse,
		Message:    "Invalid JSON response from server",
		StatusCode: statusCode,
		Err:        err,
	}
}

// httpError reports a non-2xx response whose body could not be passed
// through. A zero status yields HTTP_ERROR_UNKNOWN.
func httpError(resp *http.Response) *RedeemError {
	if resp == nil || resp.StatusCode == 0 {
		return &RedeemError{
			Kind:    KindUpstream,
			Code:    voucher.CodeHTTPErrorUnknown,
			Message: "HTTP error: unknown status",
		}
	}

	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	}

	return &RedeemError{
		Kind:       KindUpstream,
		Code:       voucher.CodeHTTPErrorPrefix + strconv.Itoa(resp.StatusCode),
		Message:    fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, text),
		StatusCode: resp.StatusCode,
	}
}
