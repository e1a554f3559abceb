package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/trucksigns/truck-signs-api/app/payments"
	"github.com/trucksigns/truck-signs-api/app/pricing"
	"github.com/trucksigns/truck-signs-api/models"
)

// OKResponse writes data as JSON with the given status.
func OKResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// ErrorResponse writes {"error": message, "code": code}.
func ErrorResponse(w http.ResponseWriter, status int, code, message string) {
	body := map[string]string{"error": message}
	if code != "" {
		body["code"] = code
	}
	OKResponse(w, status, body)
}

// WriteError maps err onto a status code and a short, client safe message.
// Unexpected errors are logged and reported without detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *models.ValidationError
		declined   *payments.DeclinedError
	)

	switch {
	case errors.Is(err, models.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, "not_found", capitalize(err.Error()))
	case errors.As(err, &validation):
		ErrorResponse(w, http.StatusBadRequest, "validation_error", validation.Reason)
	case errors.Is(err, models.ErrOrderAlreadyPaid), errors.Is(err, models.ErrPaymentInProgress):
		ErrorResponse(w, http.StatusConflict, "conflict", capitalize(err.Error()))
	case errors.Is(err, pricing.ErrIncompletePricing):
		slog.WarnContext(r.Context(), "unpriceable order", "path", r.URL.Path, "error", err)
		ErrorResponse(w, http.StatusUnprocessableEntity, "pricing_error", "Order cannot be priced")
	case errors.As(err, &declined):
		ErrorResponse(w, http.StatusPaymentRequired, string(declined.Reason), "Error with card during payment")
	case errors.Is(err, payments.ErrInvalidPaymentRequest):
		ErrorResponse(w, http.StatusBadRequest, "invalid_payment_request", "Invalid request error during payment")
	case errors.Is(err, payments.ErrChargeUnconfirmed):
		ErrorResponse(w, http.StatusGatewayTimeout, "payment_unconfirmed", "Payment outcome unknown, check the order before paying again")
	case errors.Is(err, payments.ErrGatewayTimeout):
		ErrorResponse(w, http.StatusGatewayTimeout, "gateway_timeout", "Payment processor timed out, please try again")
	case errors.Is(err, payments.ErrGatewayUnavailable):
		ErrorResponse(w, http.StatusServiceUnavailable, "gateway_unavailable", "Payment processor unavailable, please try again")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal error")
	}
}

// PathID parses the {name} path value as a positive id.
func PathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
