package server

import (
	"net/http"
	"strings"

	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

// StatusFor maps an outcome to the proxy's HTTP status. Successes are 200
// and rejected input is 400. Failures to get a usable answer from upstream
// (HTTP_ERROR_*, INVALID_JSON_RESPONSE, NETWORK_ERROR) are 502. Upstream
// error bodies keep upstream's 4xx status, become 502 after a 5xx, and are
// 400 otherwise.
func StatusFor(resp voucher.Response) int {
	if resp.Success() {
		return http.StatusOK
	}

	code := resp.Status.Code
	switch {
	case code == voucher.CodeInvalidPhoneNumber, code == voucher.CodeInvalidVoucherCode:
		return http.StatusBadRequest
	case code == voucher.CodeInvalidJSONResponse, code == voucher.CodeNetworkError,
		strings.HasPrefix(code, voucher.CodeHTTPErrorPrefix):
		return http.StatusBadGateway
	}

	switch {
	case resp.HTTPStatus >= 400 && resp.HTTPStatus < 500:
		return resp.HTTPStatus
	case resp.HTTPStatus >= 500:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
