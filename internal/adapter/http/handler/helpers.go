package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/bankist/internal/adapter/http/dto"
	"github.com/iho/bankist/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeDomainError writes err with its stable code. Internal errors are not
// echoed to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal", "internal server error")
		return
	}
	writeError(w, status, domain.ErrorCode(err), err.Error())
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrNoActiveSession),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSelfTransfer):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrLoanRejected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
