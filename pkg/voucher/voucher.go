// Package voucher defines the response envelope returned by a voucher
// redemption, together with the status codes the client emits.
package voucher

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
)

// Status codes produced by the client itself. Upstream codes are passed
// through unchanged and are not listed here.
const (
	CodeSuccess             = "SUCCESS"
	CodeInvalidPhoneNumber  = "INVALID_PHONE_NUMBER"
	CodeInvalidVoucherCode  = "INVALID_VOUCHER_CODE"
	CodeInvalidJSONResponse = "INVALID_JSON_RESPONSE"
	CodeNetworkError        = "NETWORK_ERROR"

	// CodeHTTPErrorPrefix is followed by the upstream HTTP status, or by
	// "UNKNOWN" when no status is available.
	CodeHTTPErrorPrefix  = "HTTP_ERROR_"
	CodeHTTPErrorUnknown = CodeHTTPErrorPrefix + "UNKNOWN"
)

// Status is the status block of every response.
type Status struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the normalized redemption outcome. A response is a success
// when Status.Code is CodeSuccess and it carries a non-empty data block;
// every other response is an error outcome.
//
// Responses decoded from upstream keep their raw body, and marshalling them
// reproduces that body byte for byte. Data is decoded best-effort: a data
// block whose fields do not fit Data leaves Data nil without changing the
// outcome.
type Response struct {
	Status Status `json:"status"`
	Data   *Data  `json:"data,omitempty"`

	// Error carries diagnostic detail for network and decode failures.
	Error string `json:"error,omitempty"`

	// HTTPStatus is the upstream HTTP status that produced this response.
	// Zero for responses synthesized locally.
	HTTPStatus int `json:"-"`

	raw     []byte
	hasData bool
}

// Data is the success payload.
type Data struct {
	Voucher         *Details         `json:"voucher,omitempty"`
	OwnerProfile    *OwnerProfile    `json:"owner_profile,omitempty"`
	RedeemerProfile *RedeemerProfile `json:"redeemer_profile,omitempty"`
	MyTicket        *Ticket          `json:"my_ticket,omitempty"`
	Tickets         []Ticket         `json:"tickets,omitempty"`
}

// Details describes the redeemed voucher.
type Details struct {
	VoucherID          string `json:"voucher_id"`
	AmountBaht         string `json:"amount_baht"`
	RedeemedAmountBaht string `json:"redeemed_amount_baht"`
	Member             int    `json:"member"`
	Status             string `json:"status"`
	Link               string `json:"link"`
	Detail             string `json:"detail"`
	ExpireDate         int64  `json:"expire_date"`
	Type               string `json:"type"`
	Redeemed           int    `json:"redeemed"`
	Available          int    `json:"available"`
}

// OwnerProfile is the voucher creator.
type OwnerProfile struct {
	FullName string `json:"full_name"`
}

// RedeemerProfile is the account the voucher was redeemed into.
type RedeemerProfile struct {
	MobileNumber string `json:"mobile_number"`
}

// Ticket is a single redemption record.
type Ticket struct {
	Mobile     string `json:"mobile"`
	UpdateDate int64  `json:"update_date"`
	AmountBaht string `json:"amount_baht"`
	FullName   string `json:"full_name"`
	ProfilePic string `json:"profile_pic"`
}

// NewError builds a locally synthesized error outcome.
func NewError(code, message string, cause error) Response {
	resp := Response{Status: Status{Code: code, Message: message}}
	if cause != nil {
		resp.Error = cause.Error()
	}
	return resp
}

// Success reports whether the response is a success outcome.
func (r Response) Success() bool {
	return r.Status.Code == CodeSuccess && (r.hasData || r.Data != nil)
}

// Raw returns the upstream body the response was decoded from, or nil for
// locally synthesized responses.
func (r Response) Raw() []byte {
	return r.raw
}

// WithoutRaw returns a copy of r that marshals from its fields instead of
// an upstream body.
func (r Response) WithoutRaw() Response {
	r.raw = nil
	return r
}

// response has Response's fields without its methods.
type response Response

// MarshalJSON emits the raw upstream body when there is one.
func (r Response) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(response(r))
}

// UnmarshalJSON decodes the envelope and keeps a copy of the input.
func (r *Response) UnmarshalJSON(b []byte) error {
	var env struct {
		Status Status          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return errors.Wrap(err, "decode response envelope")
	}

	hasData := HasPayload(env.Data)
	var data *Data
	if hasData {
		data = &Data{}
		if json.Unmarshal(env.Data, data) != nil {
			data = nil
		}
	}

	r.Status = env.Status
	r.Data = data
	r.Error = env.Error
	r.raw = bytes.Clone(b)
	r.hasData = hasData
	return nil
}

// HasPayload reports whether raw holds a non-empty JSON value: not
// absent, null, an empty object, an empty array or an empty string.
func HasPayload(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "{}", "[]", `""`:
		return false
	}
	// tolerate whitespace inside empty containers, e.g. "{ }"
	if len(trimmed) >= 2 && (trimmed[0] == '{' || trimmed[0] == '[') {
		inner := bytes.TrimSpace(trimmed[1 : len(trimmed)-1])
		if len(inner) == 0 {
			return false
		}
	}
	return true
}

// ErrNotObject is returned by Decode for JSON that is not an object.
var ErrNotObject = errors.New("response body is not a JSON object")

// Decode parses an upstream body. The body must be a JSON object. An object
// that does not fit the envelope, for example a status block with unexpected
// field types, is still returned with its raw bytes and whatever status
// could be read.
func Decode(body []byte) (Response, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		var v interface{}
		if json.Unmarshal(body, &v) == nil {
			return Response{}, ErrNotObject
		}
		return Response{}, errors.Wrap(err, "parse response body")
	}
	if probe == nil {
		return Response{}, ErrNotObject
	}

	var r Response
	if err := json.Unmarshal(body, &r); err == nil {
		return r, nil
	}

	r = Response{raw: bytes.Clone(body), hasData: HasPayload(probe["data"])}
	var env struct {
		Status Status `json:"status"`
	}
	if json.Unmarshal(body, &env) == nil {
		r.Status = env.Status
	}
	return r, nil
}
