package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// Envelope wraps every analysis response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// respondOK sends a successful envelope.
func respondOK(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// respondFailure sends an unsuccessful envelope with the given status.
func respondFailure(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Envelope{Success: false, Error: message})
}

// respondDomainError maps err onto a status code and sends it.
func respondDomainError(w http.ResponseWriter, err error) {
	status, ok := httpStatusForDomainError(err)
	if !ok {
		status = http.StatusInternalServerError
	}
	respondFailure(w, status, core.Message(err))
}

func httpStatusForDomainError(err error) (int, bool) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		return 0, false
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusBadRequest, true
	case core.ErrCatNotFound:
		return http.StatusNotFound, true
	case core.ErrCatAuth:
		return http.StatusUnauthorized, true
	case core.ErrCatRateLimit:
		return http.StatusTooManyRequests, true
	case core.ErrCatTimeout:
		return http.StatusGatewayTimeout, true
	case core.ErrCatExtraction:
		return http.StatusUnprocessableEntity, true
	default:
		return http.StatusInternalServerError, true
	}
}
