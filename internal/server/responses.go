package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nexoapp/nexo/internal/auth"
	"github.com/nexoapp/nexo/internal/calculator"
	"github.com/nexoapp/nexo/internal/service"
	"github.com/nexoapp/nexo/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors become a
// 500 with a generic body so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError

	switch {
	case errors.As(err, &validation),
		errors.Is(err, calculator.ErrInvalidAmount),
		errors.Is(err, calculator.ErrOverpayment),
		errors.Is(err, storage.ErrInsufficientBalance),
		errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, errBody(err))
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		writeJSON(w, http.StatusUnauthorized, errBody(err))
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody(err))
	case errors.Is(err, storage.ErrConflict), errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusConflict, errBody(err))
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func errBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &badRequestError{err: err}
	}
	return nil
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return "invalid request body: " + e.err.Error()
}

func writeDecodeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errBody(err))
}
