// Package pages implements the document page engine: per-page processing
// state bookkeeping and the controller through which a session's page
// sequence is copied, cut, pasted, duplicated, and removed.
package pages

import (
	"errors"
	"net/http"

	"github.com/lh/pagedeck/internal/clipboard"
	"github.com/lh/pagedeck/pkg/pageindex"
)

// Domain errors for page operations.
var (
	// ErrProvisionalPagesNotSupported indicates a selection composed
	// entirely of provisional draft pages, which can never be transferred.
	ErrProvisionalPagesNotSupported = errors.New("provisional pages cannot be copied or cut")

	// ErrSourceUnavailable indicates the owning session is closed or its
	// page sequence is missing.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrDocumentInConflict indicates an unresolved external sync conflict;
	// reported to the caller, never retried automatically.
	ErrDocumentInConflict = errors.New("document has an unresolved sync conflict")

	// ErrInsertionFailed indicates the page sequence could not be decoded
	// or re-encoded during a structural operation.
	ErrInsertionFailed = errors.New("page insertion failed")

	// ErrClipboardEmpty indicates a paste with no payload available.
	ErrClipboardEmpty = errors.New("no payload on the clipboard")

	// ErrNoDraft indicates a finalize with no draft page set.
	ErrNoDraft = errors.New("no draft page to finalize")

	// ErrOperationInFlight indicates a structural operation was invoked
	// while another is still running against the same document.
	ErrOperationInFlight = errors.New("another page operation is in flight")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrProvisionalPagesNotSupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pageindex.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.Is(err, pageindex.ErrPageOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, pageindex.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, clipboard.ErrSelectionTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrClipboardEmpty):
		return http.StatusNotFound
	case errors.Is(err, ErrNoDraft):
		return http.StatusNotFound
	case errors.Is(err, ErrSourceUnavailable):
		return http.StatusGone
	case errors.Is(err, ErrDocumentInConflict):
		return http.StatusConflict
	case errors.Is(err, ErrOperationInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrInsertionFailed):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
