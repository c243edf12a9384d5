package api

import (
	"errors"
	"net/http"

	"skillconnect/internal/service"
	"skillconnect/internal/store"

	"github.com/goccy/go-json"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload) //nolint:errcheck
	}
}

func WriteJSONError(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps domain errors to a status code. Anything unknown is
// logged and reported as a 500 without leaking details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrAlreadyApplied), errors.Is(err, store.ErrDuplicate):
		WriteJSONError(w, http.StatusConflict, err.Error())
	default:
		LoggerFromContext(r.Context()).Error("[API] Request failed", "path", r.URL.Path, "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(service.ErrInvalidInput, err)
	}
	return nil
}
