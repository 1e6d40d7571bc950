package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/infrastructure/http/v1/dto"
	"pgcledger/internal/infrastructure/storage/postgres"
)

// HistoryReader returns the audit snapshots of one entity.
type HistoryReader interface {
	GetEntityHistory(ctx context.Context, tenantID id.ID, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// JournalHandler exposes the journal: manual entries, listing and the
// audit trail of posted entries.
type JournalHandler struct {
	*BaseHandler
	engine  *posting.Engine
	history HistoryReader
}

// NewJournalHandler creates the handler. history may be nil, in which case
// the history route answers 404.
func NewJournalHandler(base *BaseHandler, engine *posting.Engine, history HistoryReader) *JournalHandler {
	return &JournalHandler{BaseHandler: base, engine: engine, history: history}
}

// GET /api/v1/journal
func (h *JournalHandler) List(c *gin.Context) {
	var req dto.JournalListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.Filter()
	if err != nil {
		h.Invalid(c, "period", err)
		return
	}
	entries, err := h.engine.Journal(c.Request.Context(), h.TenantID(c), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []*posting.Entry{}
	}
	h.OK(c, gin.H{"items": entries})
}

// GET /api/v1/journal/:id
func (h *JournalHandler) Get(c *gin.Context) {
	entryID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	e, err := h.engine.Get(c.Request.Context(), h.TenantID(c), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// Create posts a balanced manual or opening entry.
// POST /api/v1/journal
func (h *JournalHandler) Create(c *gin.Context) {
	var req dto.ManualEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Invalid(c, "lines", err)
		return
	}
	e, err := h.engine.PostManual(c.Request.Context(), h.TenantID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// History returns the audit snapshots of an entry, newest first.
// GET /api/v1/journal/:id/history?limit=
func (h *JournalHandler) History(c *gin.Context) {
	if h.history == nil {
		c.Status(http.StatusNotFound)
		return
	}
	entryID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	entries, err := h.history.GetEntityHistory(c.Request.Context(), h.TenantID(c), postgres.EntityJournalEntry, entryID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []postgres.AuditEntry{}
	}
	h.OK(c, gin.H{"items": entries})
}
