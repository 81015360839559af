// Package testutil provides testing utilities for the voucher client.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// SuccessBody is a redeemed-voucher body as upstream returns it.
const SuccessBody = `{"status":{"message":"success","code":"SUCCESS"},"data":{"voucher":{"voucher_id":"9000","amount_baht":"50.00","redeemed_amount_baht":"50.00","member":1,"status":"active","link":"abc123","detail":"","expire_date":1700000000000,"type":"R","redeemed":1,"available":0},"owner_profile":{"full_name":"Owner"},"redeemer_profile":{"mobile_number":"0812345678"},"my_ticket":{"mobile":"081-xxx-5678","update_date":1700000000000,"amount_baht":"50.00","full_name":"Redeemer","profile_pic":""},"tickets":[{"mobile":"081-xxx-5678","update_date":1700000000000,"amount_baht":"50.00","full_name":"Redeemer","profile_pic":""}]}}`

// MockGiftResponse defines the behavior for a mock redeem endpoint response.
type MockGiftResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is a redeem request as the mock received it.
type RecordedRequest struct {
	Method      string
	Path        string
	Header      http.Header
	Body        []byte
	Mobile      string
	VoucherHash string
}

// MockGift is a configurable mock of the voucher redemption host.
type MockGift struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	Requests     []RecordedRequest
}

// NewMockGift creates a new mock redemption server.
func NewMockGift() *MockGift {
	mock := &MockGift{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec := RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		}
		var p struct {
			Mobile      string `json:"mobile"`
			VoucherHash string `json:"voucher_hash"`
		}
		if json.Unmarshal(body, &p) == nil {
			rec.Mobile = p.Mobile
			rec.VoucherHash = p.VoucherHash
		}

		mock.mu.Lock()
		mock.RequestCount++
		mock.Requests = append(mock.Requests, rec)
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockGift) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGift) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockGift) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockGift) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockGift) SetResponse(path string, resp MockGiftResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetRedeemResponse configures the response for one voucher hash.
func (m *MockGift) SetRedeemResponse(voucherHash string, resp MockGiftResponse) {
	m.SetResponse(RedeemPath(voucherHash), resp)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockGift) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// LastRequest returns the most recent request, or false if there was none.
func (m *MockGift) LastRequest() (RecordedRequest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Requests) == 0 {
		return RecordedRequest{}, false
	}
	return m.Requests[len(m.Requests)-1], true
}

// RedeemPath is the upstream path for a voucher hash.
func RedeemPath(voucherHash string) string {
	return fmt.Sprintf("/campaign/vouchers/%s/redeem", voucherHash)
}

// defaultHandler answers redeem requests with a success body and anything
// else with 404.
func (m *MockGift) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/redeem") {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":{"code":"NOT_FOUND","message":"not found"}}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(SuccessBody))
}

// NewSuccessResponse creates a 200 OK redeem response.
func NewSuccessResponse() MockGiftResponse {
	return MockGiftResponse{
		StatusCode: http.StatusOK,
		Body:       SuccessBody,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewUpstreamErrorResponse creates an upstream error body with the given
// HTTP status and status code.
func NewUpstreamErrorResponse(statusCode int, code, message string) MockGiftResponse {
	return MockGiftResponse{
		StatusCode: statusCode,
		Body:       fmt.Sprintf(`{"status":{"code":%q,"message":%q},"data":null}`, code, message),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 response with a non-envelope body.
func NewServerErrorResponse() MockGiftResponse {
	return MockGiftResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `<html><body>Internal Server Error</body></html>`,
		Headers: map[string]string{
			"Content-Type": "text/html",
		},
	}
}

// NewMalformedResponse creates a 200 response whose body is not JSON.
func NewMalformedResponse() MockGiftResponse {
	return MockGiftResponse{
		StatusCode: http.StatusOK,
		Body:       "not json",
		Headers: map[string]string{
			"Content-Type": "text/plain",
		},
	}
}
