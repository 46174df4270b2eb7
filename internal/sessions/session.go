package sessions

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lh/pagedeck/internal/overlay"
	"github.com/lh/pagedeck/internal/pages"
)

// Session is an open editing session over one document. It exclusively owns
// the current page sequence: no other component mutates it directly, and all
// structural changes arrive through Apply from the session's controller.
type Session struct {
	documentID uuid.UUID

	mu         sync.Mutex
	records    [][]byte
	states     []pages.ProcessingState
	closed     bool
	conflicted bool
	dirty      bool

	overlay    *overlay.Overlay
	controller *pages.Controller
}

// ID returns the identity of the session's document.
func (s *Session) ID() uuid.UUID {
	return s.documentID
}

// Controller returns the page controller, the only mutation path for the
// session's page sequence.
func (s *Session) Controller() *pages.Controller {
	return s.controller
}

// Overlay returns the session's provisional draft overlay.
func (s *Session) Overlay() *overlay.Overlay {
	return s.overlay
}

// EnsureAvailable returns nil when the session can be mutated.
func (s *Session) EnsureAvailable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.records == nil {
		return pages.ErrSourceUnavailable
	}
	if s.conflicted {
		return pages.ErrDocumentInConflict
	}
	return nil
}

// PageRecords returns the current page sequence. The returned slices must be
// treated as read-only.
func (s *Session) PageRecords() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// PageCount returns the number of saved pages.
func (s *Session) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// States returns the current processing-state list.
func (s *Session) States() []pages.ProcessingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states
}

// Apply atomically replaces the page sequence and processing-state list.
// The state list length must match the page count; the mismatch guard keeps
// the renumbering invariant from ever being violated by a caller.
func (s *Session) Apply(records [][]byte, states []pages.ProcessingState) error {
	if len(records) != len(states) {
		return fmt.Errorf("state list length %d does not match page count %d", len(states), len(records))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return pages.ErrSourceUnavailable
	}

	s.records = records
	s.states = states
	s.dirty = true

	return nil
}

// Dirty reports whether the session has unsaved structural changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// SetConflicted flags or clears an unresolved external sync conflict.
// While flagged, every structural operation fails with ErrDocumentInConflict.
func (s *Session) SetConflicted(conflicted bool) {
	s.mu.Lock()
	s.conflicted = conflicted
	s.mu.Unlock()
}

// Conflicted reports whether the session is in an unresolved sync conflict.
func (s *Session) Conflicted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conflicted
}

func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.records = nil
	s.states = nil
	s.mu.Unlock()
}

func (s *Session) snapshot() ([][]byte, []pages.ProcessingState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records, s.states
}

func (s *Session) markSaved() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}
