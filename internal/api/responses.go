package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	app_errors "omnisearch/gateway/internal/errors"
)

// ErrorResponse is the uniform JSON error shape the gateway exposes:
// backend error bodies, validation failures and unexpected panics all end
// up in this envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the generic acknowledgement for mutations that return
// no resource body.
type StatusResponse struct {
	Status string `json:"status"`
}

// respondWithError maps domain errors to HTTP statuses. A handler never
// lets an error escape uncaught: anything unrecognized is logged and
// surfaced as a generic 500.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	if upstream, ok := app_errors.AsUpstream(err); ok {
		// Proxy routes forward the backend's status code verbatim.
		statusCode = upstream.Status
		message = upstream.Message
	} else {
		switch {
		case errors.Is(err, app_errors.ErrUnauthorized):
			statusCode = http.StatusUnauthorized
			message = "Invalid authentication credentials."
		case errors.Is(err, app_errors.ErrNotFound):
			statusCode = http.StatusNotFound
			message = "The requested resource was not found."
		case errors.Is(err, app_errors.ErrValidation):
			statusCode = http.StatusBadRequest
			// Validation messages name the violated rule; pass them on.
			message = err.Error()
		case errors.Is(err, app_errors.ErrPayloadTooLarge):
			statusCode = http.StatusRequestEntityTooLarge
			message = err.Error()
		case errors.Is(err, app_errors.ErrConflict):
			statusCode = http.StatusConflict
			message = "A conflict occurred with the current state of the resource."
		default:
			statusCode = http.StatusInternalServerError
			message = "An unexpected internal server error occurred."
		}
	}

	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON marshals payload and writes it with the given status.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
