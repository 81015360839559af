// Package payload encodes the outbound redemption request.
//
// Bodies that pass schema validation are encoded with goccy/go-json, which
// caches a compiled encoder per type. Anything else goes through the generic
// json-iterator path. Both paths emit identical bytes for a valid body; the
// split only affects speed.
package payload

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	gojson "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
)

// ContentType is sent with every redemption request.
const ContentType = "application/json"

// redeemPath is formatted with the path-escaped voucher hash.
const redeemPath = "/campaign/vouchers/%s/redeem"

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	generic  = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Body is the upstream request body.
type Body struct {
	Mobile      string `json:"mobile" validate:"required,max=20"`
	VoucherHash string `json:"voucher_hash" validate:"required,alphanum,max=64"`
}

// New builds a request body from cleaned input.
func New(mobile, voucherHash string) Body {
	return Body{Mobile: mobile, VoucherHash: voucherHash}
}

// Valid reports whether b matches the request schema.
func (b Body) Valid() bool {
	return validate.Struct(b) == nil
}

// Encode serializes b.
func Encode(b Body) ([]byte, error) {
	if b.Valid() {
		return EncodeFast(b)
	}
	return EncodeGeneric(b)
}

// EncodeFast serializes b with the compiled go-json encoder.
func EncodeFast(b Body) ([]byte, error) {
	data, err := gojson.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(err, "encode request body")
	}
	return data, nil
}

// EncodeGeneric serializes b with the reflection-based encoder.
func EncodeGeneric(b Body) ([]byte, error) {
	data, err := generic.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(err, "encode request body")
	}
	return data, nil
}

// RedeemURL returns the redemption endpoint for voucherHash under baseURL.
func RedeemURL(baseURL, voucherHash string) string {
	return strings.TrimRight(baseURL, "/") + fmt.Sprintf(redeemPath, url.PathEscape(voucherHash))
}

// NewRequest builds the POST request for b against baseURL.
func NewRequest(ctx context.Context, baseURL string, b Body) (*http.Request, error) {
	body, err := Encode(b)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, RedeemURL(baseURL, b.VoucherHash), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("Accept", ContentType)

	return req, nil
}
