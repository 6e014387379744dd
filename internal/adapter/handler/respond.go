package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sujanms/gharbhada/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps domain sentinels onto HTTP status codes. The message is
// the sanitized error text; internal failures collapse to a generic 500 so
// raw storage errors never leak to callers.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrPriceMismatch),
		errors.Is(err, domain.ErrMissingFields):
		status, msg = http.StatusBadRequest, err.Error()

	case errors.Is(err, domain.ErrDuplicateActiveBooking),
		errors.Is(err, domain.ErrDuplicatePayment),
		errors.Is(err, domain.ErrStaleAvailability),
		errors.Is(err, domain.ErrRoomUnavailable),
		errors.Is(err, domain.ErrInvalidState):
		status, msg = http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrPurchaseNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status, msg = http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()

	case errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrTransactionMismatch):
		status, msg = http.StatusUnauthorized, err.Error()

	case errors.Is(err, domain.ErrGatewayUnreachable):
		status, msg = http.StatusBadGateway, err.Error()
	}

	writeJSON(w, status, map[string]string{"error": msg})
}
