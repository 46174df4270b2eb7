package clipboard

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current payload wire format version. Readers treat any
// other version as absent content.
const SchemaVersion = 1

// Operation identifies how a payload's pages were taken from the source.
type Operation string

// Payload operations.
const (
	OperationCopy Operation = "copy"
	OperationCut  Operation = "cut"
)

// Valid reports whether the operation is a recognized variant.
func (o Operation) Valid() bool {
	return o == OperationCopy || o == OperationCut
}

// Payload is a self-contained unit of page transfer. It is a value detached
// from live document state: the source document may be mutated or closed
// after the payload is created without affecting it. Construct through
// NewCopy or NewCut and do not modify afterwards.
type Payload struct {
	SchemaVersion    int       `json:"schema_version"`
	ID               uuid.UUID `json:"id"`
	SourceDocumentID uuid.UUID `json:"source_document_id"`
	Operation        Operation `json:"operation"`
	Pages            [][]byte  `json:"-"`
	Snapshot         [][]byte  `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewCopy creates a copy payload from the extracted page records.
// Pages are cloned so later source mutations cannot leak in.
func NewCopy(sourceDocumentID uuid.UUID, pages [][]byte) (Payload, error) {
	if len(pages) == 0 {
		return Payload{}, ErrEmptyPayload
	}

	return Payload{
		SchemaVersion:    SchemaVersion,
		ID:               uuid.New(),
		SourceDocumentID: sourceDocumentID,
		Operation:        OperationCopy,
		Pages:            ClonePages(pages),
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// NewCut creates a cut payload carrying both the extracted pages and the full
// pre-cut page sequence of the source document. The snapshot enables
// caller-initiated rollback if the destructive half of the cut fails.
func NewCut(sourceDocumentID uuid.UUID, pages, snapshot [][]byte) (Payload, error) {
	if len(pages) == 0 {
		return Payload{}, ErrEmptyPayload
	}
	if len(snapshot) == 0 {
		return Payload{}, fmt.Errorf("%w: cut payload requires a snapshot", ErrInvalidPayload)
	}

	return Payload{
		SchemaVersion:    SchemaVersion,
		ID:               uuid.New(),
		SourceDocumentID: sourceDocumentID,
		Operation:        OperationCut,
		Pages:            ClonePages(pages),
		Snapshot:         ClonePages(snapshot),
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// PageCount returns the number of transferred pages.
func (p Payload) PageCount() int {
	return len(p.Pages)
}

// Expired reports whether the payload is past its TTL at the given instant.
func (p Payload) Expired(ttl time.Duration, now time.Time) bool {
	return now.After(p.CreatedAt.Add(ttl))
}

// ClonePages deep-copies a page record sequence.
func ClonePages(pages [][]byte) [][]byte {
	cloned := make([][]byte, len(pages))
	for i, page := range pages {
		cloned[i] = slices.Clone(page)
	}
	return cloned
}
