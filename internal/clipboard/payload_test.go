package clipboard_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lh/pagedeck/internal/clipboard"
)

func TestNewCopy(t *testing.T) {
	source := uuid.New()
	pages := [][]byte{[]byte("page1"), []byte("page2")}

	p, err := clipboard.NewCopy(source, pages)
	if err != nil {
		t.Fatalf("NewCopy() error = %v", err)
	}

	if p.SchemaVersion != clipboard.SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", p.SchemaVersion, clipboard.SchemaVersion)
	}
	if p.ID == uuid.Nil {
		t.Error("ID = nil uuid")
	}
	if p.SourceDocumentID != source {
		t.Errorf("SourceDocumentID = %v, want %v", p.SourceDocumentID, source)
	}
	if p.Operation != clipboard.OperationCopy {
		t.Errorf("Operation = %v, want %v", p.Operation, clipboard.OperationCopy)
	}
	if p.PageCount() != 2 {
		t.Errorf("PageCount() = %d, want 2", p.PageCount())
	}
	if p.Snapshot != nil {
		t.Error("copy payload carries a snapshot")
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestNewCopy_Empty(t *testing.T) {
	_, err := clipboard.NewCopy(uuid.New(), nil)
	if !errors.Is(err, clipboard.ErrEmptyPayload) {
		t.Errorf("NewCopy() error = %v, want %v", err, clipboard.ErrEmptyPayload)
	}
}

func TestNewCopy_DetachedFromSource(t *testing.T) {
	pages := [][]byte{[]byte("page1")}

	p, err := clipboard.NewCopy(uuid.New(), pages)
	if err != nil {
		t.Fatalf("NewCopy() error = %v", err)
	}

	pages[0][0] = 'x'

	if !bytes.Equal(p.Pages[0], []byte("page1")) {
		t.Errorf("payload page mutated through source: %q", p.Pages[0])
	}
}

func TestNewCut(t *testing.T) {
	source := uuid.New()
	pages := [][]byte{[]byte("b")}
	snapshot := [][]byte{[]byte("a"), []byte("b"), []byte("c")}

	p, err := clipboard.NewCut(source, pages, snapshot)
	if err != nil {
		t.Fatalf("NewCut() error = %v", err)
	}

	if p.Operation != clipboard.OperationCut {
		t.Errorf("Operation = %v, want %v", p.Operation, clipboard.OperationCut)
	}
	if len(p.Snapshot) != 3 {
		t.Errorf("Snapshot length = %d, want 3", len(p.Snapshot))
	}
}

func TestNewCut_RequiresSnapshot(t *testing.T) {
	_, err := clipboard.NewCut(uuid.New(), [][]byte{[]byte("b")}, nil)
	if !errors.Is(err, clipboard.ErrInvalidPayload) {
		t.Errorf("NewCut() error = %v, want %v", err, clipboard.ErrInvalidPayload)
	}
}

func TestOperationValid(t *testing.T) {
	tests := []struct {
		name string
		op   clipboard.Operation
		want bool
	}{
		{"copy", clipboard.OperationCopy, true},
		{"cut", clipboard.OperationCut, true},
		{"empty", clipboard.Operation(""), false},
		{"unknown", clipboard.Operation("move"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := clipboard.Payload{CreatedAt: created}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"fresh", created.Add(30 * time.Minute), false},
		{"at boundary", created.Add(time.Hour), false},
		{"past ttl", created.Add(time.Hour + time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Expired(time.Hour, tt.now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
