package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/brewstock/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// statusFor maps domain errors to an HTTP status and a client-facing message.
func statusFor(err error) (int, string) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, verrs.Error()
	case errors.Is(err, apperr.ErrInvalidKind):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrNoCredentials):
		return http.StatusPreconditionRequired, "brewfather credentials are not configured"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusBadGateway, "brewfather rejected the credentials"
	case errors.Is(err, apperr.ErrInvalidPayload):
		return http.StatusBadGateway, "brewfather returned an unexpected payload"
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusBadGateway, "brewfather request failed"
	}
	return http.StatusInternalServerError, "internal error"
}

// writeError logs server-side failures and writes the mapped error body.
func writeError(w http.ResponseWriter, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody(msg))
}
