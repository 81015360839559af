package client

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

// newResponse builds an upstream response with the given status and body.
func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// errReader fails every read.
type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		resp     *http.Response
		wantKind ErrorKind
		wantCode string
	}{
		{
			name:     "success body",
			resp:     newResponse(200, `{"status":{"code":"SUCCESS","message":"ok"},"data":{"voucher":{"voucher_id":"1"}}}`),
			wantCode: "SUCCESS",
		},
		{
			name:     "2xx upstream error body",
			resp:     newResponse(200, `{"status":{"code":"CANNOT_GET_OWN_VOUCHER","message":"no"}}`),
			wantCode: "CANNOT_GET_OWN_VOUCHER",
		},
		{
			name:     "4xx upstream error body",
			resp:     newResponse(400, `{"status":{"code":"VOUCHER_NOT_FOUND","message":"not found"}}`),
			wantCode: "VOUCHER_NOT_FOUND",
		},
		{
			name:     "5xx with envelope passes through",
			resp:     newResponse(503, `{"status":{"code":"MAINTENANCE","message":"later"}}`),
			wantCode: "MAINTENANCE",
		},
		{
			name:     "5xx html",
			resp:     newResponse(500, `<html></html>`),
			wantKind: KindUpstream,
			wantCode: "HTTP_ERROR_500",
		},
		{
			name:     "4xx empty",
			resp:     newResponse(403, ``),
			wantKind: KindUpstream,
			wantCode: "HTTP_ERROR_403",
		},
		{
			name:     "4xx array",
			resp:     newResponse(400, `[]`),
			wantKind: KindUpstream,
			wantCode: "HTTP_ERROR_400",
		},
		{
			name:     "2xx plain text",
			resp:     newResponse(200, `not json`),
			wantKind: KindDecode,
			wantCode: "INVALID_JSON_RESPONSE",
		},
		{
			name:     "2xx empty",
			resp:     newResponse(200, ``),
			wantKind: KindDecode,
			wantCode: "INVALID_JSON_RESPONSE",
		},
		{
			name:     "2xx null",
			resp:     newResponse(200, `null`),
			wantKind: KindDecode,
			wantCode: "INVALID_JSON_RESPONSE",
		},
		{
			name:     "nil response",
			resp:     nil,
			wantKind: KindUpstream,
			wantCode: "HTTP_ERROR_UNKNOWN",
		},
		{
			name:     "zero status",
			resp:     newResponse(0, ``),
			wantKind: KindUpstream,
			wantCode: "HTTP_ERROR_UNKNOWN",
		},
		{
			name:     "body read failure",
			resp:     &http.Response{StatusCode: 200, Body: io.NopCloser(errReader{})},
			wantKind: KindNetwork,
			wantCode: "NETWORK_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := classify(tt.resp)

			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("classify() error = %v, want nil", err)
				}
				if out.Status.Code != tt.wantCode {
					t.Errorf("Status.Code = %q, want %q", out.Status.Code, tt.wantCode)
				}
				if out.HTTPStatus != tt.resp.StatusCode {
					t.Errorf("HTTPStatus = %d, want %d", out.HTTPStatus, tt.resp.StatusCode)
				}
				return
			}

			var redeemErr *RedeemError
			if !errors.As(err, &redeemErr) {
				t.Fatalf("classify() error = %v, want *RedeemError", err)
			}
			if redeemErr.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", redeemErr.Kind, tt.wantKind)
			}
			if redeemErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", redeemErr.Code, tt.wantCode)
			}
		})
	}
}
