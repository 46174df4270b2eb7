package clipboard_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lh/pagedeck/internal/clipboard"
	"github.com/lh/pagedeck/internal/config"
)

// fakeMirror is an in-memory Mirror standing in for the shared store.
type fakeMirror struct {
	data   []byte
	writes int
}

func (m *fakeMirror) Write(ctx context.Context, data []byte, ttl time.Duration) error {
	m.data = data
	m.writes++
	return nil
}

func (m *fakeMirror) Read(ctx context.Context) ([]byte, error) {
	if m.data == nil {
		return nil, clipboard.ErrMirrorEmpty
	}
	return m.data, nil
}

func (m *fakeMirror) Clear(ctx context.Context) error {
	m.data = nil
	return nil
}

func newTestStation(t *testing.T, mirror clipboard.Mirror) clipboard.System {
	t.Helper()

	cfg := &config.ClipboardConfig{
		HardPageLimit:      5,
		ChunkPageThreshold: 2,
		PayloadTTL:         "1h",
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	station := clipboard.NewStation(mirror, cfg, logger)
	t.Cleanup(station.Close)

	return station
}

func TestStationCloseIdempotent(t *testing.T) {
	station := newTestStation(t, nil)

	station.Close()
	station.Close()
}

func TestStationPutPeek(t *testing.T) {
	ctx := context.Background()
	mirror := &fakeMirror{}
	station := newTestStation(t, mirror)

	p, err := clipboard.NewCopy(uuid.New(), [][]byte{[]byte("page1")})
	if err != nil {
		t.Fatalf("NewCopy() error = %v", err)
	}

	if err := station.Put(ctx, p); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := station.Peek(ctx)
	if !ok {
		t.Fatal("Peek() reported empty after Put")
	}
	if got.ID != p.ID {
		t.Errorf("Peek() ID = %v, want %v", got.ID, p.ID)
	}

	if mirror.writes != 1 {
		t.Errorf("mirror writes = %d, want 1", mirror.writes)
	}
}

func TestStationPut_EvictsPrevious(t *testing.T) {
	ctx := context.Background()
	station := newTestStation(t, &fakeMirror{})

	first, _ := clipboard.NewCopy(uuid.New(), [][]byte{[]byte("a")})
	second, _ := clipboard.NewCopy(uuid.New(), [][]byte{[]byte("b")})

	if err := station.Put(ctx, first); err != nil {
		t.Fatalf("Put() first error = %v", err)
	}
	if err := station.Put(ctx, second); err != nil {
		t.Fatalf("Put() second error = %v", err)
	}

	got, ok := station.Peek(ctx)
	if !ok {
		t.Fatal("Peek() reported empty")
	}
	if got.ID != second.ID {
		t.Errorf("Peek() ID = %v, want replacement %v", got.ID, second.ID)
	}
}

func TestStationPut_OversizeLeavesSlotUntouched(t *testing.T) {
	ctx := context.Background()
	station := newTestStation(t, &fakeMirror{})

	existing, _ := clipboard.NewCopy(uuid.New(), [][]byte{[]byte("a")})
	if err := station.Put(ctx, existing); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	oversize := make([][]byte, 6)
	for i := range oversize {
		oversize[i] = []byte("page")
	}
	big, _ := clipboard.NewCopy(uuid.New(), oversize)

	err := station.Put(ctx, big)
	if !errors.Is(err, clipboard.ErrSelectionTooLarge) {
		t.Fatalf("Put() error = %v, want %v", err, clipboard.ErrSelectionTooLarge)
	}

	got, ok := station.Peek(ctx)
	if !ok {
		t.Fatal("Peek() reported empty after failed Put")
	}
	if got.ID != existing.ID {
		t.Errorf("Peek() ID = %v, want untouched %v", got.ID, existing.ID)
	}
}

func TestStationPeek_Empty(t *testing.T) {
	station := newTestStation(t, &fakeMirror{})

	if _, ok := station.Peek(context.Background()); ok {
		t.Error("Peek() reported content on empty station")
	}
}

func TestStationPeek_Expired(t *testing.T) {
	ctx := context.Background()
	station := newTestStation(t, &fakeMirror{})

	p, err := clipboard.NewCopy(uuid.New(), [][]byte{[]byte("page")})
	if err != nil {
		t.Fatalf("NewCopy() error = %v", err)
	}
	p.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)

	if err := station.Put(ctx, p); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if _, ok := station.Peek(ctx); ok {
		t.Error("Peek() returned payload past its TTL")
	}
}

func TestStationPeek_MirrorFallback(t *testing.T) {
	ctx := context.Background()
	mirror := &fakeMirror{}

	// One station writes, a second (fresh process) reads through the mirror.
	writer := newTestStation(t, mirror)
	p, _ := clipboard.NewCopy(uuid.New(), [][]byte{[]byte("page")})
	if err := writer.Put(ctx, p); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	reader := newTestStation(t, mirror)
	got, ok := reader.Peek(ctx)
	if !ok {
		t.Fatal("Peek() did not fall back to mirror")
	}
	if got.ID != p.ID {
		t.Errorf("Peek() ID = %v, want %v", got.ID, p.ID)
	}
}

func TestStationPeek_IgnoresForeignContent(t *testing.T) {
	mirror := &fakeMirror{data: []byte("some other application's clipboard")}
	station := newTestStation(t, mirror)

	if _, ok := station.Peek(context.Background()); ok {
		t.Error("Peek() accepted unrecognized mirror content")
	}
}

func TestStationClear(t *testing.T) {
	ctx := context.Background()
	mirror := &fakeMirror{}
	station := newTestStation(t, mirror)

	p, _ := clipboard.NewCopy(uuid.New(), [][]byte{[]byte("page")})
	if err := station.Put(ctx, p); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	station.Clear(ctx)

	if station.HasPayload(ctx) {
		t.Error("HasPayload() = true after Clear")
	}
	if mirror.data != nil {
		t.Error("mirror still holds data after Clear")
	}
}

func TestStationClearIfSourceMatches(t *testing.T) {
	source := uuid.New()
	other := uuid.New()

	cutPayload := func(t *testing.T) clipboard.Payload {
		t.Helper()
		p, err := clipboard.NewCut(source, [][]byte{[]byte("b")}, [][]byte{[]byte("a"), []byte("b")})
		if err != nil {
			t.Fatalf("NewCut() error = %v", err)
		}
		return p
	}

	t.Run("matching cut cleared", func(t *testing.T) {
		ctx := context.Background()
		station := newTestStation(t, &fakeMirror{})
		if err := station.Put(ctx, cutPayload(t)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		station.ClearIfSourceMatches(ctx, source)

		if station.HasPayload(ctx) {
			t.Error("matching cut payload survived")
		}
	})

	t.Run("different source kept", func(t *testing.T) {
		ctx := context.Background()
		station := newTestStation(t, &fakeMirror{})
		if err := station.Put(ctx, cutPayload(t)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		station.ClearIfSourceMatches(ctx, other)

		if !station.HasPayload(ctx) {
			t.Error("cut payload from a different source was cleared")
		}
	})

	t.Run("copy kept", func(t *testing.T) {
		ctx := context.Background()
		station := newTestStation(t, &fakeMirror{})
		p, _ := clipboard.NewCopy(source, [][]byte{[]byte("a")})
		if err := station.Put(ctx, p); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		station.ClearIfSourceMatches(ctx, source)

		if !station.HasPayload(ctx) {
			t.Error("copy payload was cleared")
		}
	})
}
