package server

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/voucher-client/pkg/batch"
)

// BatchPath is the proxy's batch redemption route.
const BatchPath = "/v1/redeem/batch"

// maxBatchBody caps batch POST bodies.
const maxBatchBody = 1 << 20

// BatchRequest is the POST body of BatchPath.
type BatchRequest struct {
	Requests []batch.Request `json:"requests"`
}

// BatchItem is one entry of a BatchResponse. Response holds the outcome
// body exactly as the single-item route would return it.
type BatchItem struct {
	PhoneNumber string          `json:"phone_number"`
	VoucherCode string          `json:"voucher_code"`
	HTTPStatus  int             `json:"http_status"`
	Response    json.RawMessage `json:"response"`
}

// BatchResponse lists outcomes in request order.
type BatchResponse struct {
	Results []BatchItem `json:"results"`
}

// redeemBatch handles POST /v1/redeem/batch. The route answers 200 once the
// batch ran; per-item statuses are in the body.
func (s *Server) redeemBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := s.batch.RedeemAll(r.Context(), req.Requests)
	switch {
	case errors.Is(err, batch.ErrTooManyItems):
		writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Batch incomplete")
	}

	out := BatchResponse{Results: make([]BatchItem, 0, len(results))}
	for _, res := range results {
		body := res.Response.Raw()
		if body == nil {
			if body, err = json.Marshal(res.Response); err != nil {
				writeError(w, r, http.StatusInternalServerError, "failed to encode response")
				return
			}
		}
		out.Results = append(out.Results, BatchItem{
			PhoneNumber: res.Request.PhoneNumber,
			VoucherCode: res.Request.VoucherCode,
			HTTPStatus:  StatusFor(res.Response),
			Response:    body,
		})
	}

	body, err := json.Marshal(out)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
