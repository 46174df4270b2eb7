package clipboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lh/pagedeck/pkg/handlers"
)

// Handler exposes the shared page station over HTTP.
type Handler struct {
	station System
	logger  *slog.Logger
}

// NewHandler creates a clipboard handler with the specified configuration.
func NewHandler(station System, logger *slog.Logger) *Handler {
	return &Handler{
		station: station,
		logger:  logger.With("handler", "clipboard"),
	}
}

// Register attaches clipboard routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /clipboard", h.Status)
	mux.HandleFunc("DELETE /clipboard", h.Clear)
}

// statusView describes the held payload without exposing page bytes.
type statusView struct {
	HasPayload bool       `json:"has_payload"`
	ID         uuid.UUID  `json:"id,omitempty"`
	Operation  Operation  `json:"operation,omitempty"`
	PageCount  int        `json:"page_count,omitempty"`
	Source     uuid.UUID  `json:"source_document_id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.station.Peek(r.Context())
	if !ok {
		handlers.RespondJSON(w, http.StatusOK, statusView{HasPayload: false})
		return
	}

	created := payload.CreatedAt
	handlers.RespondJSON(w, http.StatusOK, statusView{
		HasPayload: true,
		ID:         payload.ID,
		Operation:  payload.Operation,
		PageCount:  payload.PageCount(),
		Source:     payload.SourceDocumentID,
		CreatedAt:  &created,
	})
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.station.Clear(r.Context())

	w.WriteHeader(http.StatusNoContent)
}
