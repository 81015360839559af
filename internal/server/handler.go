package server

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/voucher-client/pkg/voucher"
)

// RedeemPath is the proxy's redemption route.
const RedeemPath = "/v1/redeem"

// maxRequestBody caps POST bodies.
const maxRequestBody = 64 << 10

// RedeemRequest is the POST body of RedeemPath.
type RedeemRequest struct {
	PhoneNumber string `json:"phone_number"`
	VoucherCode string `json:"voucher_code"`
}

// ErrorResponse is returned for requests that never reach redemption.
type ErrorResponse struct {
	Error string `json:"error"`
}

// redeemJSON handles POST /v1/redeem.
func (s *Server) redeemJSON(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.redeem(w, r, req)
}

// redeemQuery handles GET /v1/redeem?phone=...&voucher=...
func (s *Server) redeemQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.redeem(w, r, RedeemRequest{
		PhoneNumber: q.Get("phone"),
		VoucherCode: q.Get("voucher"),
	})
}

func (s *Server) redeem(w http.ResponseWriter, r *http.Request, req RedeemRequest) {
	resp := s.redeemer.Redeem(r.Context(), req.PhoneNumber, req.VoucherCode)
	status := StatusFor(resp)

	zerolog.Ctx(r.Context()).Info().
		Str("code", resp.Status.Code).
		Int("upstream_status", resp.HTTPStatus).
		Int("status", status).
		Msg("Redemption finished")

	writeResponse(w, r, status, resp)
}

// writeResponse writes resp, reproducing upstream bodies byte for byte.
func writeResponse(w http.ResponseWriter, r *http.Request, status int, resp voucher.Response) {
	body := resp.Raw()
	if body == nil {
		var err error
		if body, err = json.Marshal(resp); err != nil {
			writeError(w, r, http.StatusInternalServerError, "failed to encode response")
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write response")
	}
}

// writeError writes an ErrorResponse with the given status code.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	zerolog.Ctx(r.Context()).Warn().Str("error", message).Int("status", status).Msg("Handler error")

	body, _ := json.Marshal(ErrorResponse{Error: message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
