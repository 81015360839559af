package client

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

// maxBodySize caps how much of an upstream body is read.
const maxBodySize = 1 << 20

// classify turns an upstream response into an outcome. Well-formed upstream
// bodies are returned unchanged; a *RedeemError is returned only when
// upstream was silent, malformed or unreachable.
func classify(resp *http.Response) (voucher.Response, error) {
	if resp == nil {
		return voucher.Response{}, httpError(nil)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return voucher.Response{}, networkError(errors.Wrap(err, "read response body"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyFailure(resp, body)
	}
	return classifySuccess(resp, body)
}

// classifyFailure handles non-2xx responses. Bodies with a status code are
// upstream's own error and pass through.
func classifyFailure(resp *http.Response, body []byte) (voucher.Response, error) {
	out, err := voucher.Decode(body)
	if err != nil || out.Status.Code == "" {
		return voucher.Response{}, httpError(resp)
	}

	out.HTTPStatus = resp.StatusCode
	return out, nil
}

// classifySuccess handles 2xx responses. Any valid envelope is returned;
// whether it is a success outcome is decided by Response.Success.
func classifySuccess(resp *http.Response, body []byte) (voucher.Response, error) {
	out, err := voucher.Decode(body)
	if err != nil {
		return voucher.Response{}, decodeError(resp.StatusCode, err)
	}

	out.HTTPStatus = resp.StatusCode
	return out, nil
}
