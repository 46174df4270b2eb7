// Package clipboard implements the page transfer station: a process-wide,
// single-slot clipboard for page payloads, mirrored to a shared store so
// payloads survive process restarts and reach other document instances.
package clipboard

import (
	"errors"
	"net/http"
)

// Domain errors for clipboard operations.
var (
	// ErrEncodingFailed indicates the payload could not be serialized for
	// the shared store.
	ErrEncodingFailed = errors.New("payload encoding failed")

	// ErrSelectionTooLarge indicates the payload page count exceeds the
	// configured hard limit.
	ErrSelectionTooLarge = errors.New("selection too large")

	// ErrEmptyPayload indicates a payload with no pages.
	ErrEmptyPayload = errors.New("payload has no pages")

	// ErrInvalidPayload indicates serialized data that does not decode to a
	// recognized payload. Readers treat this as absence, never as a failure.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrMirrorEmpty indicates the shared store holds no payload.
	ErrMirrorEmpty = errors.New("mirror empty")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSelectionTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrEmptyPayload):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
