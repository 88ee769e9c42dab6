package handler

import (
	"net/http"
	"time"

	apperrors "agendo/pkg/errors"
	httputil "agendo/pkg/http"

	"github.com/julienschmidt/httprouter"
)

type SlotsResponse struct {
	ProviderID  string   `json:"provider_id"`
	SessionKind string   `json:"session_kind"`
	Slots       []string `json:"slots"`
}

// ListSlots serves GET /api/v1/providers/:id/slots?kind=&from=&to=. With no
// from/to the provider's default booking horizon applies; from and to must
// come together.
func (h *AppointmentHandler) ListSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	providerID := ps.ByName("id")
	query := r.URL.Query()
	kind := query.Get("kind")

	from, to, err := parseQueryWindow(query.Get("from"), query.Get("to"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	slots, err := h.slots.ListSlots(r.Context(), providerID, kind, from, to)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, SlotsResponse{
		ProviderID:  providerID,
		SessionKind: kind,
		Slots:       slots,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListSlots", "operation", "WriteSuccess", "error", err)
	}
}

func parseQueryWindow(fromStr, toStr string) (*time.Time, *time.Time, error) {
	if fromStr == "" && toStr == "" {
		return nil, nil, nil
	}
	if fromStr == "" || toStr == "" {
		return nil, nil, apperrors.InvalidInput("Query parameters 'from' and 'to' must be provided together")
	}

	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return nil, nil, apperrors.InvalidInput("Query parameter 'from' must be an ISO 8601 instant")
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return nil, nil, apperrors.InvalidInput("Query parameter 'to' must be an ISO 8601 instant")
	}

	return &from, &to, nil
}
