package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lh/pagedeck/internal/clipboard"
	"github.com/lh/pagedeck/internal/lifecycle"
	"github.com/lh/pagedeck/internal/overlay"
	"github.com/lh/pagedeck/internal/pagecodec"
	"github.com/lh/pagedeck/internal/pages"
	"github.com/lh/pagedeck/internal/storage"
	"github.com/lh/pagedeck/pkg/pagination"
	"github.com/lh/pagedeck/pkg/query"
)

var projection = query.NewProjectionMap("documents",
	query.Field{Name: "Id", Column: "id"},
	query.Field{Name: "Name", Column: "name"},
	query.Field{Name: "PageCount", Column: "page_count"},
	query.Field{Name: "SizeBytes", Column: "size_bytes"},
	query.Field{Name: "StorageKey", Column: "storage_key"},
	query.Field{Name: "CreatedAt", Column: "created_at"},
	query.Field{Name: "UpdatedAt", Column: "updated_at"},
)

const defaultSort = "UpdatedAt"

type repo struct {
	db         *sql.DB
	storage    storage.System
	codec      pagecodec.Codec
	station    clipboard.System
	limits     pages.Limits
	pagination pagination.Config
	logger     *slog.Logger

	mu   sync.RWMutex
	open map[uuid.UUID]*Session
}

// New creates the document session system.
func New(
	db *sql.DB,
	store storage.System,
	codec pagecodec.Codec,
	station clipboard.System,
	limits pages.Limits,
	pagination pagination.Config,
	logger *slog.Logger,
) System {
	return &repo{
		db:         db,
		storage:    store,
		codec:      codec,
		station:    station,
		limits:     limits,
		pagination: pagination,
		logger:     logger.With("system", "sessions"),
		open:       make(map[uuid.UUID]*Session),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize).WithCodec(r.codec)
}

func (r *repo) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		if err := Migrate(r.db); err != nil {
			r.logger.Error("migration failed", "error", err)
			return
		}
		r.logger.Info("database schema ready")
	})
	return nil
}

func (r *repo) Create(ctx context.Context, name string, data []byte) (*Document, error) {
	pageCount, err := r.codec.PageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if pageCount < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidDocument)
	}

	doc := &Document{
		ID:        uuid.New(),
		Name:      name,
		PageCount: pageCount,
		SizeBytes: int64(len(data)),
	}
	doc.StorageKey = fmt.Sprintf("documents/%s.pdf", doc.ID)

	if err := r.storage.Store(ctx, doc.StorageKey, data); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO documents (id, name, page_count, size_bytes, storage_key, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			doc.ID, doc.Name, doc.PageCount, doc.SizeBytes, doc.StorageKey, doc.CreatedAt, doc.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return replaceStates(ctx, tx, doc.ID, pages.NewStates(pageCount))
	})
	if err != nil {
		if derr := r.storage.Delete(ctx, doc.StorageKey); derr != nil {
			r.logger.Warn("failed to delete document blob", "key", doc.StorageKey, "error", derr)
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	r.logger.Info("document created", "id", doc.ID, "pages", doc.PageCount)

	return doc, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	var doc Document
	err := r.db.QueryRowContext(
		ctx,
		`SELECT id, name, page_count, size_bytes, storage_key, created_at, updated_at
		FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Name, &doc.PageCount, &doc.SizeBytes, &doc.StorageKey, &doc.CreatedAt, &doc.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}

	return &doc, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	} else {
		qb.OrderBy("", true)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rows, err := r.db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.PageCount, &doc.SizeBytes, &doc.StorageKey, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	r.Close(id)

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM page_states WHERE document_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if err := r.storage.Delete(ctx, doc.StorageKey); err != nil {
		r.logger.Warn("failed to delete document blob", "key", doc.StorageKey, "error", err)
	}

	return nil
}

func (r *repo) Open(ctx context.Context, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	existing, ok := r.open[id]
	r.mu.RUnlock()
	if ok {
		return existing, nil
	}

	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := r.storage.Retrieve(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("retrieve document: %w", err)
	}

	records, err := r.codec.Split(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	states, err := r.loadStates(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(states) != len(records) {
		// Stored state drifted from the blob; rebuild rather than trust it.
		r.logger.Warn("processing states rebuilt", "document", id, "stored", len(states), "pages", len(records))
		states = pages.NewStates(len(records))
	}

	s := &Session{
		documentID: id,
		records:    records,
		states:     states,
		overlay:    overlay.New(),
	}
	s.controller = pages.NewController(s, r.station, s.overlay, r.limits, r.logger)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.open[id]; ok {
		return existing, nil
	}
	r.open[id] = s

	r.logger.Info("session opened", "document", id, "pages", len(records))

	return s, nil
}

func (r *repo) Session(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.open[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *repo) Save(ctx context.Context, s *Session) error {
	if err := s.EnsureAvailable(); err != nil {
		return err
	}

	records, states := s.snapshot()

	data, err := r.codec.Assemble(records)
	if err != nil {
		return fmt.Errorf("assemble document: %w", err)
	}

	doc, err := r.Find(ctx, s.ID())
	if err != nil {
		return err
	}

	if err := r.storage.Store(ctx, doc.StorageKey, data); err != nil {
		return fmt.Errorf("store document: %w", err)
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(
			ctx,
			`UPDATE documents SET page_count = $1, size_bytes = $2, updated_at = $3 WHERE id = $4`,
			len(records), int64(len(data)), time.Now().UTC(), s.ID(),
		)
		if err != nil {
			return err
		}
		return replaceStates(ctx, tx, s.ID(), states)
	})
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	s.markSaved()

	r.logger.Info("session saved", "document", s.ID(), "pages", len(records))

	return nil
}

func (r *repo) Close(id uuid.UUID) {
	r.mu.Lock()
	s, ok := r.open[id]
	delete(r.open, id)
	r.mu.Unlock()

	if ok {
		s.close()
		r.logger.Info("session closed", "document", id)
	}
}

func (r *repo) loadStates(ctx context.Context, id uuid.UUID) ([]pages.ProcessingState, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT page_number, needs_ocr, needs_extraction, ocr_processed_at, extracted_at
		FROM page_states WHERE document_id = $1 ORDER BY page_number`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("load page states: %w", err)
	}
	defer rows.Close()

	var states []pages.ProcessingState
	for rows.Next() {
		var state pages.ProcessingState
		if err := rows.Scan(&state.PageNumber, &state.NeedsOCR, &state.NeedsExtraction, &state.OCRProcessedAt, &state.ExtractedAt); err != nil {
			return nil, fmt.Errorf("scan page state: %w", err)
		}
		states = append(states, state)
	}

	return states, rows.Err()
}

// replaceStates persists the state list wholesale: the list is always fully
// rebuilt after a structural change, so patching rows would only invite
// stale numbering.
func replaceStates(ctx context.Context, tx *sql.Tx, id uuid.UUID, states []pages.ProcessingState) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM page_states WHERE document_id = $1`, id); err != nil {
		return err
	}

	for _, state := range states {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO page_states (document_id, page_number, needs_ocr, needs_extraction, ocr_processed_at, extracted_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, state.PageNumber, state.NeedsOCR, state.NeedsExtraction, state.OCRProcessedAt, state.ExtractedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
