package clipboard

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MediaType is the private type identifier serialized payloads carry on the
// shared store. It keeps other applications' clipboard content from being
// misinterpreted as a page payload, and vice versa.
const MediaType = "application/vnd.pagedeck.pages+json"

// envelope is the versioned wire representation of a Payload. Page bytes are
// base64-encoded so the envelope remains a plain JSON document.
type envelope struct {
	MediaType        string    `json:"media_type"`
	SchemaVersion    int       `json:"schema_version"`
	ID               uuid.UUID `json:"id"`
	SourceDocumentID uuid.UUID `json:"source_document_id"`
	Operation        Operation `json:"operation"`
	PageCount        int       `json:"page_count"`
	Pages            []string  `json:"pages"`
	Snapshot         []string  `json:"snapshot,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Encode serializes a payload into its wire envelope. Page encoding runs in
// bounded batches of chunkSize pages so peak scratch memory tracks the chunk
// size rather than the selection size; output is identical either way.
func Encode(p Payload, chunkSize int) ([]byte, error) {
	if p.PageCount() < 1 {
		return nil, ErrEmptyPayload
	}
	if !p.Operation.Valid() {
		return nil, fmt.Errorf("%w: unknown operation %q", ErrEncodingFailed, p.Operation)
	}

	env := envelope{
		MediaType:        MediaType,
		SchemaVersion:    p.SchemaVersion,
		ID:               p.ID,
		SourceDocumentID: p.SourceDocumentID,
		Operation:        p.Operation,
		PageCount:        p.PageCount(),
		Pages:            encodePages(p.Pages, chunkSize),
		CreatedAt:        p.CreatedAt,
	}

	if p.Operation == OperationCut {
		env.Snapshot = encodePages(p.Snapshot, chunkSize)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}

	return data, nil
}

// Decode deserializes a wire envelope back into a payload. Content with the
// wrong media type, an unrecognized schema version, or a page count mismatch
// fails with ErrInvalidPayload; callers must treat that as absence.
func Decode(data []byte) (Payload, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if env.MediaType != MediaType {
		return Payload{}, fmt.Errorf("%w: media type %q", ErrInvalidPayload, env.MediaType)
	}
	if env.SchemaVersion != SchemaVersion {
		return Payload{}, fmt.Errorf("%w: schema version %d", ErrInvalidPayload, env.SchemaVersion)
	}
	if !env.Operation.Valid() {
		return Payload{}, fmt.Errorf("%w: operation %q", ErrInvalidPayload, env.Operation)
	}
	if env.PageCount < 1 || len(env.Pages) != env.PageCount {
		return Payload{}, fmt.Errorf("%w: page count %d does not match %d encoded pages", ErrInvalidPayload, env.PageCount, len(env.Pages))
	}
	if env.CreatedAt.IsZero() {
		return Payload{}, fmt.Errorf("%w: missing creation time", ErrInvalidPayload)
	}
	if env.Operation == OperationCut && len(env.Snapshot) == 0 {
		return Payload{}, fmt.Errorf("%w: cut payload missing its pre-cut snapshot", ErrInvalidPayload)
	}

	pages, err := decodePages(env.Pages)
	if err != nil {
		return Payload{}, err
	}

	var snapshot [][]byte
	if len(env.Snapshot) > 0 {
		if snapshot, err = decodePages(env.Snapshot); err != nil {
			return Payload{}, err
		}
	}

	return Payload{
		SchemaVersion:    env.SchemaVersion,
		ID:               env.ID,
		SourceDocumentID: env.SourceDocumentID,
		Operation:        env.Operation,
		Pages:            pages,
		Snapshot:         snapshot,
		CreatedAt:        env.CreatedAt,
	}, nil
}

func encodePages(pages [][]byte, chunkSize int) []string {
	if chunkSize < 1 {
		chunkSize = len(pages)
	}

	encoded := make([]string, 0, len(pages))
	for start := 0; start < len(pages); start += chunkSize {
		end := min(start+chunkSize, len(pages))
		for _, page := range pages[start:end] {
			encoded = append(encoded, base64.StdEncoding.EncodeToString(page))
		}
	}
	return encoded
}

func decodePages(encoded []string) ([][]byte, error) {
	pages := make([][]byte, len(encoded))
	for i, s := range encoded {
		page, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrInvalidPayload, i, err)
		}
		pages[i] = page
	}
	return pages, nil
}
