package sessions

import (
	"context"

	"github.com/google/uuid"
	"github.com/lh/pagedeck/internal/lifecycle"
	"github.com/lh/pagedeck/pkg/pagination"
)

// System defines document and session management operations.
// Implementations handle blob storage and database persistence.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Create imports a PDF as a new document: the byte stream is validated,
	// stored, and a fresh processing-state list is persisted for its pages.
	Create(ctx context.Context, name string, data []byte) (*Document, error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Document], error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Open loads the document's byte sequence, splits it into page records,
	// and returns the session owning them. Opening an already-open document
	// returns the existing session.
	Open(ctx context.Context, id uuid.UUID) (*Session, error)

	// Session returns the open session for a document, if any.
	Session(id uuid.UUID) (*Session, error)

	// Save assembles the session's page records into a single document,
	// persists the blob, and replaces the stored metadata and
	// processing-state list.
	Save(ctx context.Context, s *Session) error

	// Close discards the in-memory session without persisting changes.
	Close(id uuid.UUID)

	// Start applies database migrations via the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}
