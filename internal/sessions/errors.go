// Package sessions provides document storage and open-session management.
// A session exclusively owns its in-memory page sequence; all structural
// mutation flows through the session's page controller.
package sessions

import (
	"errors"
	"net/http"
)

// Domain errors for document and session operations.
var (
	ErrNotFound        = errors.New("document not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidDocument = errors.New("document is not a readable PDF")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid or missing file")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
