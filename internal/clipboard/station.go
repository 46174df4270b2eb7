package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lh/pagedeck/internal/config"
)

// System is the single authority for what, if anything, is on the page
// clipboard. It holds exactly one payload at a time; Put unconditionally
// evicts the previous one. All sessions in the process share one System.
type System interface {
	// Put stores the payload, replacing any previous one, and mirrors a
	// serialized copy to the shared store. Fails with ErrSelectionTooLarge
	// above the hard page limit and ErrEncodingFailed when serialization
	// fails; the previous payload is untouched on failure.
	Put(ctx context.Context, p Payload) error

	// Peek returns the current payload if present and not expired. It
	// prefers the in-memory slot and falls back to the shared store, which
	// may have been written by another process. Absent, expired, corrupt,
	// or unrecognized content all read as (Payload{}, false).
	Peek(ctx context.Context) (Payload, bool)

	// HasPayload reports whether Peek would return a payload.
	HasPayload(ctx context.Context) bool

	// ClearIfSourceMatches removes the stored payload only if it is a cut
	// whose source document matches; no-op otherwise. Used after a paste
	// completes so a stale cut snapshot does not linger once its pages
	// have been consumed elsewhere.
	ClearIfSourceMatches(ctx context.Context, sourceDocumentID uuid.UUID)

	// Clear unconditionally removes the stored payload.
	Clear(ctx context.Context)

	// Close stops the station's serialization goroutine. Close is
	// idempotent; the station must not be used afterwards.
	Close()
}

// Mirror is the shared store a serialized payload is written through to,
// reaching other processes and surviving restarts.
type Mirror interface {
	Write(ctx context.Context, data []byte, ttl time.Duration) error
	Read(ctx context.Context) ([]byte, error)
	Clear(ctx context.Context) error
}

type station struct {
	mirror         Mirror
	ttl            time.Duration
	hardPageLimit  int
	chunkThreshold int
	logger         *slog.Logger

	// All slot access is funneled through ops onto a single goroutine, so
	// cross-document transfer needs no further coordination.
	ops  chan func()
	slot *Payload

	closeOnce sync.Once
}

// NewStation creates the process-wide page transfer station. The mirror may
// be nil, in which case payloads live only in process memory.
func NewStation(mirror Mirror, cfg *config.ClipboardConfig, logger *slog.Logger) System {
	s := &station{
		mirror:         mirror,
		ttl:            cfg.PayloadTTLDuration(),
		hardPageLimit:  cfg.HardPageLimit,
		chunkThreshold: cfg.ChunkPageThreshold,
		logger:         logger.With("system", "clipboard"),
		ops:            make(chan func()),
	}

	go s.run()

	return s
}

// run serializes all slot access on a single goroutine.
func (s *station) run() {
	for op := range s.ops {
		op()
	}
}

func (s *station) do(fn func()) {
	done := make(chan struct{})
	s.ops <- func() {
		fn()
		close(done)
	}
	<-done
}

func (s *station) Put(ctx context.Context, p Payload) error {
	if p.PageCount() < 1 {
		return ErrEmptyPayload
	}
	if p.PageCount() > s.hardPageLimit {
		return fmt.Errorf("%w: %d pages exceeds limit of %d", ErrSelectionTooLarge, p.PageCount(), s.hardPageLimit)
	}

	data, err := Encode(p, s.chunkThreshold)
	if err != nil {
		return err
	}

	var mirrorErr error
	s.do(func() {
		s.slot = &p
		if s.mirror != nil {
			mirrorErr = s.mirror.Write(ctx, data, s.ttl)
		}
	})

	if mirrorErr != nil {
		// The in-memory slot is authoritative within this process; a mirror
		// failure only limits cross-process reach.
		s.logger.Warn("clipboard mirror write failed", "error", mirrorErr)
	}

	s.logger.Info("payload stored",
		"id", p.ID,
		"operation", p.Operation,
		"pages", p.PageCount(),
		"source", p.SourceDocumentID,
	)

	return nil
}

func (s *station) Peek(ctx context.Context) (Payload, bool) {
	var result Payload
	var ok bool

	s.do(func() {
		result, ok = s.peekLocked(ctx)
	})

	return result, ok
}

func (s *station) HasPayload(ctx context.Context) bool {
	_, ok := s.Peek(ctx)
	return ok
}

func (s *station) ClearIfSourceMatches(ctx context.Context, sourceDocumentID uuid.UUID) {
	s.do(func() {
		p, ok := s.peekLocked(ctx)
		if !ok || p.Operation != OperationCut || p.SourceDocumentID != sourceDocumentID {
			return
		}
		s.clearLocked(ctx)
		s.logger.Info("cut payload cleared after paste", "source", sourceDocumentID)
	})
}

func (s *station) Clear(ctx context.Context) {
	s.do(func() {
		s.clearLocked(ctx)
	})
}

func (s *station) Close() {
	s.closeOnce.Do(func() {
		close(s.ops)
	})
}

// peekLocked must run on the serialization goroutine.
func (s *station) peekLocked(ctx context.Context) (Payload, bool) {
	now := time.Now().UTC()

	if s.slot != nil {
		if !s.slot.Expired(s.ttl, now) {
			return *s.slot, true
		}
		s.slot = nil
	}

	if s.mirror == nil {
		return Payload{}, false
	}

	data, err := s.mirror.Read(ctx)
	if err != nil {
		if !errors.Is(err, ErrMirrorEmpty) {
			s.logger.Debug("clipboard mirror read failed", "error", err)
		}
		return Payload{}, false
	}

	p, err := Decode(data)
	if err != nil {
		// Shared store content is untrusted: another app version or a stale
		// entry reads as absence, never a failure.
		s.logger.Debug("ignoring unrecognized clipboard content", "error", err)
		return Payload{}, false
	}

	if p.Expired(s.ttl, now) {
		return Payload{}, false
	}

	s.slot = &p
	return p, true
}

// clearLocked must run on the serialization goroutine.
func (s *station) clearLocked(ctx context.Context) {
	s.slot = nil
	if s.mirror != nil {
		if err := s.mirror.Clear(ctx); err != nil {
			s.logger.Warn("clipboard mirror clear failed", "error", err)
		}
	}
}
