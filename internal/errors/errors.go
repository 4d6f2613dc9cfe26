package errors

import (
	"errors"
	"fmt"
)

// This package defines the sentinel errors shared across the gateway.
// Services return these instead of HTTP status codes; the API layer maps
// them with errors.Is when writing the response.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// Mapped to 404 Not Found. Treated as benign on session deletion.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that client input failed local validation,
	// before any network call was made. Mapped to 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized signifies a missing or invalid signed-in session, or
	// a backend 401 that survived the single token-refresh retry.
	// Mapped to 401 Unauthorized.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict signifies the operation conflicts with the current state
	// of a resource (e.g. registering an existing email). Mapped to 409.
	ErrConflict = errors.New("resource conflict")

	// ErrPayloadTooLarge signifies an upload over the configured size cap.
	// Mapped to 413 Request Entity Too Large.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrInternal signifies an unexpected server-side failure. Mapped to a
	// generic 500 so implementation details never leak to the client.
	ErrInternal = errors.New("internal server error")
)

// UpstreamError carries a non-2xx backend response through the proxy layer
// so the handler can forward the backend's status code verbatim.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// AsUpstream unwraps err into an *UpstreamError if one is in the chain.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	ok := errors.As(err, &ue)
	return ue, ok
}
