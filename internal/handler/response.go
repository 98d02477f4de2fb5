package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pos_terminal/internal/apiclient"
	"pos_terminal/internal/cart"
	"pos_terminal/internal/service"
	"pos_terminal/internal/session"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

type ResponsePayload struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Data     any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Printf("Error encoding response: %v", err)
	}
}

func writeSuccess(w http.ResponseWriter, logger *log.Logger, message string, data any) {
	writeJSON(w, logger, http.StatusOK, ResponsePayload{Status: statusSuccess, Message: message, Data: data})
}

// writeFailure reports err with the message the screen would show, falling
// back to fallback when neither the remote API nor a local rule supplied one.
func writeFailure(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	writeJSON(w, logger, statusFor(err), ResponsePayload{
		Status:  statusFailed,
		Message: service.FailureMessage(err, fallback),
	})
}

func statusFor(err error) int {
	var apiErr *apiclient.APIError

	switch {
	case errors.Is(err, session.ErrLoginFailed):
		return http.StatusUnauthorized
	case errors.Is(err, cart.ErrItemNotFound), errors.Is(err, cart.ErrRentalNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCommitInFlight):
		return http.StatusConflict
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInsufficientInventory),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrMissingCustomerPhone),
		errors.Is(err, service.ErrMissingDueDate),
		errors.Is(err, service.ErrNothingSelected),
		errors.Is(err, service.ErrInvalidEmployee),
		errors.Is(err, service.ErrMissingItemID),
		errors.Is(err, service.ErrNegativeQuantity):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrJournalDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
