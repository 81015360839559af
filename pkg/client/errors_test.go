package client

import (
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

func TestRedeemError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RedeemError
		expected string
	}{
		{
			name:     "with wrapped error",
			err:      networkError(errors.New("connection refused")),
			expected: "redeem network error (NETWORK_ERROR): Network error occurred: connection refused",
		},
		{
			name:     "without wrapped error",
			err:      errInvalidVoucherCode,
			expected: "redeem validation error (INVALID_VOUCHER_CODE): Invalid voucher code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRedeemError_Unwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := networkError(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var redeemErr *RedeemError
	if !errors.As(error(err), &redeemErr) {
		t.Fatal("errors.As should find *RedeemError")
	}
	if redeemErr.Kind != KindNetwork {
		t.Errorf("Kind = %q, want %q", redeemErr.Kind, KindNetwork)
	}
}

func TestRedeemError_Response(t *testing.T) {
	tests := []struct {
		name       string
		err        *RedeemError
		code       string
		message    string
		wantError  string
		httpStatus int
	}{
		{
			name:    "validation carries no detail",
			err:     errInvalidPhoneNumber,
			code:    voucher.CodeInvalidPhoneNumber,
			message: "Invalid phone number format",
		},
		{
			name:      "network carries cause",
			err:       networkError(errors.New("dial tcp: refused")),
			code:      voucher.CodeNetworkError,
			message:   "Network error occurred",
			wantError: "dial tcp: refused",
		},
		{
			name:       "decode carries cause and status",
			err:        decodeError(200, errors.New("invalid character")),
			code:       voucher.CodeInvalidJSONResponse,
			message:    "Invalid JSON response from server",
			wantError:  "invalid character",
			httpStatus: 200,
		},
		{
			name:       "http error",
			err:        httpError(&http.Response{StatusCode: 504}),
			code:       "HTTP_ERROR_504",
			message:    "HTTP error: 504 Gateway Timeout",
			httpStatus: 504,
		},
		{
			name:       "http error with unregistered status",
			err:        httpError(&http.Response{StatusCode: 599, Status: "599 Custom"}),
			code:       "HTTP_ERROR_599",
			message:    "HTTP error: 599 Custom",
			httpStatus: 599,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.err.Response()
			if resp.Status.Code != tt.code {
				t.Errorf("Status.Code = %q, want %q", resp.Status.Code, tt.code)
			}
			if resp.Status.Message != tt.message {
				t.Errorf("Status.Message = %q, want %q", resp.Status.Message, tt.message)
			}
			if resp.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", resp.Error, tt.wantError)
			}
			if resp.HTTPStatus != tt.httpStatus {
				t.Errorf("HTTPStatus = %d, want %d", resp.HTTPStatus, tt.httpStatus)
			}
			if resp.Success() {
				t.Error("error outcome reported as success")
			}
		})
	}
}

func TestToResponse_UnclassifiedFailure(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp := c.toResponse(errors.New("boom"), zerolog.Nop())

	if resp.Status.Code != voucher.CodeNetworkError {
		t.Errorf("Status.Code = %q, want %q", resp.Status.Code, voucher.CodeNetworkError)
	}
	if resp.Error != "boom" {
		t.Errorf("Error = %q, want %q", resp.Error, "boom")
	}
}
