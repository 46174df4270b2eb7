package sessions

import (
	"time"

	"github.com/google/uuid"
)

// Document represents a stored paginated document with metadata. The byte
// sequence lives in blob storage under StorageKey; the processing-state list
// is persisted alongside and rebuilt on every structural change.
type Document struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PageCount  int       `json:"page_count"`
	SizeBytes  int64     `json:"size_bytes"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
