package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sujanms/gharbhada/internal/core/domain"
	"github.com/sujanms/gharbhada/internal/core/services"
)

type BookingHandler struct {
	svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// BookCash submits a cash booking request; it lands in pending_approval
// until the landlord decides.
func (h *BookingHandler) BookCash(w http.ResponseWriter, r *http.Request) {
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
	req.PaymentMethod = string(domain.MethodCash)

	resp, err := h.svc.InitiateBooking(r.Context(), principal, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.ApproveCashBooking)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.RejectCashBooking)
}

func (h *BookingHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, principal domain.Principal, bookingID uuid.UUID) (*domain.Booking, error),
) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
		return
	}

	booking, err := op(r.Context(), principal, bookingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ListPendingCash(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(principal domain.Principal) (any, error) {
		return h.svc.ListPendingCashBookings(r.Context(), principal)
	})
}

func (h *BookingHandler) ListLandlord(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(principal domain.Principal) (any, error) {
		return h.svc.ListLandlordBookings(r.Context(), principal)
	})
}

func (h *BookingHandler) ListTenant(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(principal domain.Principal) (any, error) {
		return h.svc.ListTenantBookings(r.Context(), principal)
	})
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, query func(domain.Principal) (any, error)) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	result, err := query(principal)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": result})
}
