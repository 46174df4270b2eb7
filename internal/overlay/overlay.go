// Package overlay holds a document session's provisional draft page: a
// rendered but not yet finalized page that can be previewed merged with the
// saved page sequence without ever touching persisted state.
package overlay

import (
	"slices"
	"sync"

	"github.com/lh/pagedeck/pkg/pageindex"
)

// Overlay holds at most one draft page rendering. It keeps no reference into
// any document session; Compose only concatenates the snapshot it is given,
// so the component is reusable across saves.
type Overlay struct {
	mu    sync.Mutex
	draft []byte
}

// New creates an empty overlay.
func New() *Overlay {
	return &Overlay{}
}

// SetDraft replaces the current draft page; nil clears it.
// The bytes are cloned so the caller's buffer stays independent.
func (o *Overlay) SetDraft(page []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if page == nil {
		o.draft = nil
		return
	}
	o.draft = slices.Clone(page)
}

// HasDraft reports whether a draft page is set.
func (o *Overlay) HasDraft() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draft != nil
}

// Compose appends the draft page (if any) after the saved page sequence and
// reports the appended half-open index range. Without a draft the saved
// sequence is returned unchanged with an empty range. Compose is pure for a
// fixed (saved, draft) pair: repeated calls never grow the result.
func (o *Overlay) Compose(saved [][]byte) ([][]byte, pageindex.Range) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.draft == nil {
		return saved, pageindex.Range{}
	}

	combined := make([][]byte, 0, len(saved)+1)
	combined = append(combined, saved...)
	combined = append(combined, slices.Clone(o.draft))

	return combined, pageindex.Range{Start: len(saved), End: len(saved) + 1}
}

// ProvisionalRange returns the range the draft would occupy when composed
// onto a sequence of the given length; empty when no draft is set.
func (o *Overlay) ProvisionalRange(savedCount int) pageindex.Range {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.draft == nil {
		return pageindex.Range{}
	}
	return pageindex.Range{Start: savedCount, End: savedCount + 1}
}

// Finalize returns the draft bytes for the caller to merge into the real
// page sequence. The overlay performs no persistence itself; the caller must
// clear the draft with SetDraft(nil) once the merge has been applied.
func (o *Overlay) Finalize() []byte {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.draft == nil {
		return nil
	}
	return slices.Clone(o.draft)
}
