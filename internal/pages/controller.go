package pages

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/lh/pagedeck/internal/clipboard"
	"github.com/lh/pagedeck/internal/config"
	"github.com/lh/pagedeck/internal/overlay"
	"github.com/lh/pagedeck/pkg/pageindex"
)

// Source is the host document session a controller mutates. The session
// exclusively owns its page sequence; Apply is the only way content changes.
type Source interface {
	// ID returns the document identity used in transfer payloads.
	ID() uuid.UUID

	// EnsureAvailable returns nil when the session can be mutated, or
	// ErrSourceUnavailable / ErrDocumentInConflict otherwise.
	EnsureAvailable() error

	// PageRecords returns the current page sequence. Callers must treat the
	// returned slices as read-only.
	PageRecords() [][]byte

	// States returns the current processing-state list.
	States() []ProcessingState

	// Apply atomically replaces the page sequence and processing-state list.
	Apply(records [][]byte, states []ProcessingState) error
}

// Limits bounds page selections and payload encoding.
type Limits struct {
	HardPageLimit      int
	ChunkPageThreshold int
}

// LimitsFromConfig derives operation limits from the clipboard configuration.
func LimitsFromConfig(cfg *config.ClipboardConfig) Limits {
	return Limits{
		HardPageLimit:      cfg.HardPageLimit,
		ChunkPageThreshold: cfg.ChunkPageThreshold,
	}
}

// Controller is the only component permitted to mutate a document's page
// sequence. All indices crossing its boundary are zero-based; one-based page
// numbers are converted exactly once at the caller-facing layer.
//
// Operations are not reentrant: a second structural operation against the
// same document while one is in flight is rejected with ErrOperationInFlight,
// because partial renumbering is not safely observable mid-operation.
type Controller struct {
	source  Source
	station clipboard.System
	overlay *overlay.Overlay
	limits  Limits
	logger  *slog.Logger

	mu   sync.Mutex
	busy bool
}

// NewController creates a page controller for one document session.
func NewController(
	source Source,
	station clipboard.System,
	ov *overlay.Overlay,
	limits Limits,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		source:  source,
		station: station,
		overlay: ov,
		limits:  limits,
		logger:  logger.With("system", "pages", "document", source.ID()),
	}
}

// Overlay returns the session's provisional overlay.
func (c *Controller) Overlay() *overlay.Overlay {
	return c.overlay
}

// CopyPages extracts copies of the selected pages into a copy payload and
// stores it on the transfer station. The source document is untouched.
// Pages appear in the payload in ascending original-index order regardless
// of selection order, so paste order is deterministic.
func (c *Controller) CopyPages(ctx context.Context, indices []int) (clipboard.Payload, error) {
	if err := c.begin(); err != nil {
		return clipboard.Payload{}, err
	}
	defer c.end()

	if err := c.source.EnsureAvailable(); err != nil {
		return clipboard.Payload{}, err
	}

	records := c.source.PageRecords()
	selection, err := c.validateSelection(indices, len(records))
	if err != nil {
		return clipboard.Payload{}, err
	}

	payload, err := clipboard.NewCopy(c.source.ID(), c.extract(records, selection))
	if err != nil {
		return clipboard.Payload{}, err
	}

	if err := c.station.Put(ctx, payload); err != nil {
		return clipboard.Payload{}, err
	}

	c.logger.Info("pages copied", "count", len(selection))

	return payload, nil
}

// CutPages performs the two-phase cut: phase one builds a cut payload
// carrying the full pre-cut snapshot and stores it on the transfer station;
// phase two physically removes the pages from the source. A failure in phase
// two leaves the stored snapshot available for Rollback, so cut never
// silently loses pages.
func (c *Controller) CutPages(ctx context.Context, indices []int) (clipboard.Payload, error) {
	if err := c.begin(); err != nil {
		return clipboard.Payload{}, err
	}
	defer c.end()

	if err := c.source.EnsureAvailable(); err != nil {
		return clipboard.Payload{}, err
	}

	records := c.source.PageRecords()
	selection, err := c.validateSelection(indices, len(records))
	if err != nil {
		return clipboard.Payload{}, err
	}

	payload, err := clipboard.NewCut(c.source.ID(), c.extract(records, selection), records)
	if err != nil {
		return clipboard.Payload{}, err
	}

	if err := c.station.Put(ctx, payload); err != nil {
		return clipboard.Payload{}, err
	}

	// Destructive half: remove in descending index order so earlier
	// deletions do not shift later positions.
	remaining := slices.Clone(records)
	for _, idx := range pageindex.Descending(selection) {
		remaining = slices.Delete(remaining, idx, idx+1)
	}

	states := StatesAfterRemove(c.source.States(), selection)

	if err := c.source.Apply(remaining, states); err != nil {
		return payload, fmt.Errorf("cut removal failed, snapshot retained for rollback: %w", err)
	}

	c.logger.Info("pages cut", "count", len(selection), "remaining", len(remaining))

	return payload, nil
}

// InsertPages copies the payload's pages into the sequence starting at the
// given zero-based position; nil means append at the end. Inserted pages are
// marked as needing OCR and extraction; prior state is preserved, shifted
// where necessary. A cut payload triggers station cleanup once its pages
// have been consumed.
func (c *Controller) InsertPages(ctx context.Context, payload clipboard.Payload, at *int) (int, error) {
	if err := c.begin(); err != nil {
		return 0, err
	}
	defer c.end()

	if err := c.source.EnsureAvailable(); err != nil {
		return 0, err
	}

	if payload.PageCount() < 1 {
		return 0, clipboard.ErrEmptyPayload
	}

	records := c.source.PageRecords()

	insertAt := len(records)
	if at != nil {
		insertAt = *at
	}
	if insertAt < 0 || insertAt > len(records) {
		return 0, fmt.Errorf("%w: insert position %d outside [0-%d]", pageindex.ErrPageOutOfRange, insertAt, len(records))
	}

	combined := make([][]byte, 0, len(records)+payload.PageCount())
	combined = append(combined, records[:insertAt]...)
	combined = append(combined, clipboard.ClonePages(payload.Pages)...)
	combined = append(combined, records[insertAt:]...)

	states := StatesAfterInsert(c.source.States(), insertAt, payload.PageCount())

	if err := c.source.Apply(combined, states); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInsertionFailed, err)
	}

	if payload.Operation == clipboard.OperationCut {
		c.station.ClearIfSourceMatches(ctx, payload.SourceDocumentID)
	}

	c.logger.Info("pages inserted", "count", payload.PageCount(), "at", insertAt)

	return payload.PageCount(), nil
}

// Paste retrieves the current payload from the transfer station and inserts
// it at the given position; nil means append. Fails with ErrClipboardEmpty
// when no payload is present.
func (c *Controller) Paste(ctx context.Context, at *int) (int, error) {
	payload, ok := c.station.Peek(ctx)
	if !ok {
		return 0, ErrClipboardEmpty
	}
	return c.InsertPages(ctx, payload, at)
}

// RemovePages deletes the selected pages and renumbers the remaining
// processing states contiguously.
func (c *Controller) RemovePages(ctx context.Context, indices []int) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.source.EnsureAvailable(); err != nil {
		return err
	}

	records := c.source.PageRecords()
	selection, err := c.validateSelection(indices, len(records))
	if err != nil {
		return err
	}

	remaining := slices.Clone(records)
	for _, idx := range pageindex.Descending(selection) {
		remaining = slices.Delete(remaining, idx, idx+1)
	}

	states := StatesAfterRemove(c.source.States(), selection)

	if err := c.source.Apply(remaining, states); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertionFailed, err)
	}

	c.logger.Info("pages removed", "count", len(selection), "remaining", len(remaining))

	return nil
}

// DuplicatePages inserts a copy immediately after each selected page.
// Sources are processed in ascending order with an insertion-count offset so
// later indices remain correct; duplicates are marked as needing OCR and
// extraction.
func (c *Controller) DuplicatePages(ctx context.Context, indices []int) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.source.EnsureAvailable(); err != nil {
		return err
	}

	records := c.source.PageRecords()
	selection, err := c.validateSelection(indices, len(records))
	if err != nil {
		return err
	}

	combined := slices.Clone(records)
	for offset, idx := range selection {
		pos := idx + offset
		combined = slices.Insert(combined, pos+1, slices.Clone(combined[pos]))
	}

	states := StatesAfterDuplicate(c.source.States(), selection)

	if err := c.source.Apply(combined, states); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertionFailed, err)
	}

	c.logger.Info("pages duplicated", "count", len(selection), "total", len(combined))

	return nil
}

// FinalizeDraft appends the provisional draft page to the real page sequence
// and clears the overlay, making it a permanent page of the document. The
// appended page is marked as needing OCR and extraction like any other
// insertion; prior state is untouched. Returns the one-based page number of
// the finalized page, or ErrNoDraft when no draft is set.
func (c *Controller) FinalizeDraft(ctx context.Context) (int, error) {
	if err := c.begin(); err != nil {
		return 0, err
	}
	defer c.end()

	if err := c.source.EnsureAvailable(); err != nil {
		return 0, err
	}

	page := c.overlay.Finalize()
	if page == nil {
		return 0, ErrNoDraft
	}

	records := c.source.PageRecords()
	combined := make([][]byte, 0, len(records)+1)
	combined = append(combined, records...)
	combined = append(combined, page)

	states := StatesAfterInsert(c.source.States(), len(records), 1)

	if err := c.source.Apply(combined, states); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInsertionFailed, err)
	}

	c.overlay.SetDraft(nil)

	c.logger.Info("draft finalized", "page", len(combined))

	return len(combined), nil
}

// Rollback restores the source document from a cut payload's snapshot, the
// recovery path when the destructive half of a cut failed. Processing states
// are rebuilt fresh for the restored sequence.
func (c *Controller) Rollback(ctx context.Context, payload clipboard.Payload) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if payload.Operation != clipboard.OperationCut || len(payload.Snapshot) == 0 {
		return fmt.Errorf("%w: rollback requires a cut payload with a snapshot", clipboard.ErrInvalidPayload)
	}
	if payload.SourceDocumentID != c.source.ID() {
		return fmt.Errorf("%w: snapshot belongs to document %s", clipboard.ErrInvalidPayload, payload.SourceDocumentID)
	}

	restored := clipboard.ClonePages(payload.Snapshot)
	if err := c.source.Apply(restored, NewStates(len(restored))); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertionFailed, err)
	}

	c.logger.Info("document restored from cut snapshot", "pages", len(restored))

	return nil
}

// validateSelection filters the provisional range out of the selection, then
// normalizes and bounds-checks it against the saved page count. Selections
// left empty by provisional filtering fail with ErrProvisionalPagesNotSupported;
// selections above the hard limit fail fast before any mutation.
func (c *Controller) validateSelection(indices []int, pageCount int) ([]int, error) {
	if len(indices) == 0 {
		return nil, pageindex.ErrEmptySelection
	}

	filtered := pageindex.ExcludeRange(indices, c.overlay.ProvisionalRange(pageCount))
	if len(filtered) == 0 {
		return nil, ErrProvisionalPagesNotSupported
	}

	selection, err := pageindex.Normalize(filtered, pageCount)
	if err != nil {
		return nil, err
	}

	if len(selection) > c.limits.HardPageLimit {
		return nil, fmt.Errorf("%w: %d pages exceeds limit of %d", clipboard.ErrSelectionTooLarge, len(selection), c.limits.HardPageLimit)
	}

	return selection, nil
}

// extract clones the selected pages in ascending index order, in bounded
// batches so peak memory tracks the chunk threshold for large selections.
func (c *Controller) extract(records [][]byte, selection []int) [][]byte {
	chunkSize := c.limits.ChunkPageThreshold
	if chunkSize < 1 {
		chunkSize = len(selection)
	}

	out := make([][]byte, 0, len(selection))
	for start := 0; start < len(selection); start += chunkSize {
		end := min(start+chunkSize, len(selection))
		for _, idx := range selection[start:end] {
			out = append(out, slices.Clone(records[idx]))
		}
	}
	return out
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return ErrOperationInFlight
	}
	c.busy = true
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}
