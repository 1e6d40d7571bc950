package handlers

import (
	"github.com/gin-gonic/gin"

	"pgcledger/internal/domain/parties"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

// PartyHandler manages customers and suppliers.
type PartyHandler struct {
	*BaseHandler
	service *parties.Service
}

func NewPartyHandler(base *BaseHandler, service *parties.Service) *PartyHandler {
	return &PartyHandler{BaseHandler: base, service: service}
}

// GET /api/v1/parties
func (h *PartyHandler) List(c *gin.Context) {
	var req dto.PartyListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	result, err := h.service.List(c.Request.Context(), h.TenantID(c), req.Filter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// GET /api/v1/parties/:id
func (h *PartyHandler) Get(c *gin.Context) {
	partyID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), h.TenantID(c), partyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Create assigns the next ledger code under the parent account.
// POST /api/v1/parties
func (h *PartyHandler) Create(c *gin.Context) {
	var req dto.CreatePartyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Invalid(c, "parentAccountId", err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), h.TenantID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// PUT /api/v1/parties/:id
func (h *PartyHandler) Update(c *gin.Context) {
	partyID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePartyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), h.TenantID(c), partyID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// DELETE /api/v1/parties/:id
func (h *PartyHandler) Delete(c *gin.Context) {
	partyID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), h.TenantID(c), partyID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
