package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sujanms/gharbhada/internal/core/domain"
	"github.com/sujanms/gharbhada/internal/core/services"
)

type EsewaHandler struct {
	svc *services.BookingService
}

func NewEsewaHandler(svc *services.BookingService) *EsewaHandler {
	return &EsewaHandler{svc: svc}
}

// Initiate creates the purchase, booking and pending payment for a gateway
// booking and returns the signed redirect parameters.
func (h *EsewaHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req services.InitiateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	req.PaymentMethod = string(domain.MethodEsewa)

	resp, err := h.svc.InitiateBooking(r.Context(), principal, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Complete handles the gateway's success redirect. The encoded payload is
// verified before anything is trusted; the response never echoes internal
// error payloads back toward the gateway-facing client.
func (h *EsewaHandler) Complete(w http.ResponseWriter, r *http.Request) {
	encoded := r.URL.Query().Get("data")
	if encoded == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing data parameter"})
		return
	}

	resp, err := h.svc.CompleteGatewayBooking(r.Context(), encoded)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
