package sessions

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lh/pagedeck/internal/clipboard"
	"github.com/lh/pagedeck/internal/pagecodec"
	"github.com/lh/pagedeck/internal/pages"
	"github.com/lh/pagedeck/pkg/handlers"
	"github.com/lh/pagedeck/pkg/pageindex"
	"github.com/lh/pagedeck/pkg/pagination"
)

// Handler provides HTTP endpoints for document, session, and page operations.
// This is the one-based boundary: page numbers in requests and responses are
// one-based and converted to zero-based indices exactly once, here.
type Handler struct {
	sys           System
	codec         pagecodec.Codec
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a session handler with the specified configuration.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "sessions"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// WithCodec sets the codec used to assemble preview responses.
func (h *Handler) WithCodec(codec pagecodec.Codec) *Handler {
	h.codec = codec
	return h
}

// Register attaches all document and session routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /documents", h.Upload)
	mux.HandleFunc("GET /documents", h.List)
	mux.HandleFunc("GET /documents/{id}", h.Find)
	mux.HandleFunc("DELETE /documents/{id}", h.Delete)
	mux.HandleFunc("POST /documents/{id}/sessions", h.Open)

	mux.HandleFunc("GET /sessions/{id}", h.Status)
	mux.HandleFunc("POST /sessions/{id}/save", h.Save)
	mux.HandleFunc("DELETE /sessions/{id}", h.Close)

	mux.HandleFunc("POST /sessions/{id}/pages/copy", h.Copy)
	mux.HandleFunc("POST /sessions/{id}/pages/cut", h.Cut)
	mux.HandleFunc("POST /sessions/{id}/pages/paste", h.Paste)
	mux.HandleFunc("POST /sessions/{id}/pages/duplicate", h.Duplicate)
	mux.HandleFunc("POST /sessions/{id}/pages/remove", h.Remove)

	mux.HandleFunc("PUT /sessions/{id}/draft", h.SetDraft)
	mux.HandleFunc("POST /sessions/{id}/draft/finalize", h.FinalizeDraft)
	mux.HandleFunc("DELETE /sessions/{id}/draft", h.ClearDraft)
	mux.HandleFunc("GET /sessions/{id}/preview", h.Preview)
}

// selectionRequest carries one-based page numbers from the caller.
type selectionRequest struct {
	Pages []int `json:"pages"`
}

// pasteRequest optionally carries the one-based position to insert before;
// omitted means append at the end.
type pasteRequest struct {
	At *int `json:"at,omitempty"`
}

// payloadView summarizes a transfer payload without exposing page bytes.
type payloadView struct {
	ID        uuid.UUID           `json:"id"`
	Operation clipboard.Operation `json:"operation"`
	PageCount int                 `json:"page_count"`
	Source    uuid.UUID           `json:"source_document_id"`
	CreatedAt time.Time           `json:"created_at"`
}

// sessionView reports session status including the provisional range in
// one-based page numbers.
type sessionView struct {
	DocumentID       uuid.UUID               `json:"document_id"`
	PageCount        int                     `json:"page_count"`
	Dirty            bool                    `json:"dirty"`
	Conflicted       bool                    `json:"conflicted"`
	HasDraft         bool                    `json:"has_draft"`
	ProvisionalRange *pageindex.Range        `json:"provisional_range,omitempty"`
	States           []pages.ProcessingState `json:"states"`
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	doc, err := h.sys.Create(r.Context(), name, data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.Open(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, h.view(s))
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.sys.Save(r.Context(), s); err != nil {
		handlers.RespondError(w, h.logger, pages.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	h.sys.Close(id)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Copy(w http.ResponseWriter, r *http.Request) {
	s, indices, ok := h.selection(w, r)
	if !ok {
		return
	}

	payload, err := s.Controller().CopyPages(r.Context(), indices)
	if err != nil {
		handlers.RespondError(w, h.logger, pages.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, viewPayload(payload))
}

func (h *Handler) Cut(w http.ResponseWriter, r *http.Request) {
	s, indices, ok := h.selection(w, r)
	if !ok {
		return
	}

	payload, err := s.Controller().CutPages(r.Context(), indices)
	if err != nil {
		handlers.RespondError(w, h.logger, pages.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, viewPayload(payload))
}

func (h *Handler) Paste(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req pasteRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	var at *int
	if req.At != nil {
		idx := pageindex.FromPageNumber(*req.At)
		at = &idx
	}

	count, err := s.Controller().Paste(r.Context(), at)
	if err != nil {
		handlers.RespondError(w, h.logger, pages.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]int{"inserted": count})
}

func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request) {
	s, indices, ok := h.selection(w, r)
	if !ok {
		return
	}

	if err := s.Controller().DuplicatePages(r.Context(), indices); err != nil {
		handlers.RespondError(w, h.logger, pages.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	s, indices, ok := h.selection(w, r)
	if !ok {
		return
	}

	if err := s.Controller().RemovePages(r.Context(), indices); err != nil {
		handlers.RespondError(w, h.logger, pages.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) SetDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}
	if len(data) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	s.Overlay().SetDraft(data)

	handlers.RespondJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) FinalizeDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if _, err := s.Controller().FinalizeDraft(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, pages.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Overlay().SetDraft(nil)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	combined, _ := s.Overlay().Compose(s.PageRecords())

	data, err := h.codec.Assemble(combined)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondPDF(w, http.StatusOK, data)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return nil, false
	}

	s, err := h.sys.Session(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	return s, true
}

func (h *Handler) selection(w http.ResponseWriter, r *http.Request) (*Session, []int, bool) {
	s, ok := h.session(w, r)
	if !ok {
		return nil, nil, false
	}

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return nil, nil, false
	}

	return s, pageindex.FromPageNumbers(req.Pages), true
}

func (h *Handler) view(s *Session) sessionView {
	view := sessionView{
		DocumentID: s.ID(),
		PageCount:  s.PageCount(),
		Dirty:      s.Dirty(),
		Conflicted: s.Conflicted(),
		HasDraft:   s.Overlay().HasDraft(),
		States:     s.States(),
	}

	if r := s.Overlay().ProvisionalRange(view.PageCount); !r.Empty() {
		// Report the range in one-based page numbers for the caller.
		view.ProvisionalRange = &pageindex.Range{
			Start: pageindex.ToPageNumber(r.Start),
			End:   pageindex.ToPageNumber(r.End),
		}
	}

	return view
}

func viewPayload(p clipboard.Payload) payloadView {
	return payloadView{
		ID:        p.ID,
		Operation: p.Operation,
		PageCount: p.PageCount(),
		Source:    p.SourceDocumentID,
		CreatedAt: p.CreatedAt,
	}
}
