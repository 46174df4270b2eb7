package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/lh/pagedeck/internal/config"
	"github.com/lh/pagedeck/internal/lifecycle"
	"github.com/lh/pagedeck/internal/storage"
)

func newTestStorage(t *testing.T) storage.System {
	t.Helper()

	cfg := &config.StorageConfig{BasePath: t.TempDir()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.New(cfg, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lc := lifecycle.New()
	if err := store.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	lc.WaitForStartup()

	return store
}

func TestStoreRetrieve(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	data := []byte("%PDF-1.7 content")
	if err := store.Store(ctx, "documents/test.pdf", data); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := store.Retrieve(ctx, "documents/test.pdf")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if !bytes.Equal(got, data) {
		t.Errorf("Retrieve() = %q, want %q", got, data)
	}
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	if err := store.Store(ctx, "key", []byte("first")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := store.Store(ctx, "key", []byte("second")); err != nil {
		t.Fatalf("Store() overwrite error = %v", err)
	}

	got, err := store.Retrieve(ctx, "key")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !bytes.Equal(got, []byte("second")) {
		t.Errorf("Retrieve() = %q, want %q", got, "second")
	}
}

func TestRetrieve_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.Retrieve(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Retrieve() error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	if err := store.Store(ctx, "documents/doomed.pdf", []byte("data")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if err := store.Delete(ctx, "documents/doomed.pdf"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := store.Retrieve(ctx, "documents/doomed.pdf"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Retrieve() after delete error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestDelete_Missing(t *testing.T) {
	store := newTestStorage(t)

	if err := store.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("Delete() on missing key error = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	if err := store.Store(ctx, "present", []byte("data")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	exists, err := store.Validate(ctx, "present")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !exists {
		t.Error("Validate() = false for stored key")
	}

	exists, err = store.Validate(ctx, "absent")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if exists {
		t.Error("Validate() = true for missing key")
	}
}

func TestInvalidKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"traversal", "../escape"},
		{"nested traversal", "documents/../../escape"},
		{"absolute", "/etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Store(ctx, tt.key, []byte("data")); !errors.Is(err, storage.ErrInvalidKey) {
				t.Errorf("Store(%q) error = %v, want %v", tt.key, err, storage.ErrInvalidKey)
			}
			if _, err := store.Retrieve(ctx, tt.key); !errors.Is(err, storage.ErrInvalidKey) {
				t.Errorf("Retrieve(%q) error = %v, want %v", tt.key, err, storage.ErrInvalidKey)
			}
		})
	}
}
