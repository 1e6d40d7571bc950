package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/domain/company"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

// CompanyHandler registers and lists companies. Its routes run without a
// tenant header.
type CompanyHandler struct {
	*BaseHandler
	service *company.Service
}

func NewCompanyHandler(base *BaseHandler, service *company.Service) *CompanyHandler {
	return &CompanyHandler{BaseHandler: base, service: service}
}

// Create registers a company and copies the template chart into it.
// POST /api/v1/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	t, copied, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.CompanyCreatedResponse{Company: t, AccountsCopied: copied})
}

// GET /api/v1/companies
func (h *CompanyHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": list})
}

// GET /api/v1/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	tenantID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	t, err := h.service.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// POST /api/v1/companies/:id/suspend
func (h *CompanyHandler) Suspend(c *gin.Context) {
	tenantID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Suspend(c.Request.Context(), tenantID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// POST /api/v1/companies/:id/activate
func (h *CompanyHandler) Activate(c *gin.Context) {
	tenantID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Activate(c.Request.Context(), tenantID); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
