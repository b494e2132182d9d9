// Package handler is the HTTP layer: it decodes typed request structs,
// calls the service layer, and encodes typed responses. The apperror→status
// mapping lives here and nowhere else.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/noteful/internal/apperror"
)

// ErrorResponse is the error body every endpoint returns: a status echo, a
// human-readable message, and — where one applies — the field that caused
// the failure.
type ErrorResponse struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must go out before the body; once Encode writes, they're fixed.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and sends the standard
// error body.
//
// Login failures are collapsed deliberately: internally the error records
// whether the username or the password was wrong, but the response says the
// same thing either way so callers can't enumerate usernames. Unknown errors
// become a generic 500 — internal details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		message := appErr.Message
		location := appErr.Location

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, apperror.ErrInvalidInput),
			errors.Is(err, apperror.ErrInvalidRef),
			errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrLogin):
			status = http.StatusBadRequest
			message = "Incorrect username or password"
			location = ""
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}

		writeJSON(w, status, ErrorResponse{
			Status:   status,
			Message:  message,
			Location: location,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Status:  http.StatusInternalServerError,
		Message: "An internal error occurred",
	})
}

// writeUnauthenticated is the guard for the impossible case of a protected
// handler running without a caller in the context. RequireAuth prevents it;
// this keeps the failure mode a clean 401 instead of a nil dereference.
func writeUnauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, ErrorResponse{
		Status:  http.StatusUnauthorized,
		Message: "Unauthorized",
	})
}

// decodeJSON decodes a request body into a typed request struct, translating
// decode failures into the error taxonomy.
//
// A JSON value of the wrong type (password as a boolean, tags as a string)
// surfaces as a json.UnmarshalTypeError naming the field; that becomes the
// field-type validation error the API contract promises instead of a bare
// parse failure.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			if typeErr.Field == "tags" {
				return apperror.InvalidInput("tags", "The `tags` property must be an array")
			}
			return apperror.ValidationFailed(typeErr.Field,
				fmt.Sprintf("The field %s must be type String", typeErr.Field))
		}
		return apperror.InvalidInput("", "Invalid JSON body")
	}
	return nil
}
