package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so all responses
// share one shape. Errors always look like
//
//	{"error": "Username already exists", "code": "conflict"}
//
// "error" is the text a client shows to the user; "code" is for branching.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/snippetbox/internal/apperror"
)

// maxBodyBytes caps request bodies. Credentials are tiny.
const maxBodyBytes = 1 << 16

// ErrorResponse is the error format returned by all API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`          // Human-readable description
	Code  string `json:"code,omitempty"` // Machine-readable error type (e.g., "conflict")
}

// writeJSON sends a JSON response with the given status code.
// Headers and status go out before the body; nothing can be changed after.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// readJSON decodes a size-limited JSON body into dst. Unknown fields are
// ignored; anything that is not a single JSON object is a validation error.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	if dec.More() {
		return apperror.ValidationFailed("body", "request body must be a single JSON object")
	}
	return nil
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it.
//
// ERROR MAPPING:
//
//	ErrValidation   → 400 validation_error
//	ErrConflict     → 400 conflict      (duplicate username is a bad signup)
//	ErrUnauthorized → 401 unauthorized  (bad credentials, bad token)
//	ErrForbidden    → 403 forbidden
//	ErrNotFound     → 404 not_found
//	anything else   → 500, generic message
//
// The service layer never sees status codes; this is the only place they
// are chosen.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		code := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			code = "validation_error"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
			code = "conflict"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			code = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			code = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			code = "not_found"
		}

		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{Error: appErr.Message, Code: code})
			return
		}
	}

	// Unknown error: the raw text may hold SQL or file paths, so it stays
	// in the logs.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "Server error",
		Code:  "internal_error",
	})
}
