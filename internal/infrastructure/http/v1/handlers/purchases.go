package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/domain/documents/purchase"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler drives supplier invoices through their lifecycle. Every
// transition responds with the document and what it posted.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// GET /api/v1/purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	var req dto.DocumentListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.PurchaseFilter()
	if err != nil {
		h.Invalid(c, "filter", err)
		return
	}
	result, err := h.service.List(c.Request.Context(), h.TenantID(c), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// GET /api/v1/purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	pur, err := h.service.GetByID(c.Request.Context(), h.TenantID(c), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, pur)
}

// Create stores a draft.
// POST /api/v1/purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CommercialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToPurchaseCreate()
	if err != nil {
		h.Invalid(c, "partyId", err)
		return
	}
	pur, err := h.service.Create(c.Request.Context(), h.TenantID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, pur)
}

// Update edits a draft.
// PUT /api/v1/purchases/:id
func (h *PurchaseHandler) Update(c *gin.Context) {
	purchaseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCommercialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	pur, err := h.service.Update(c.Request.Context(), h.TenantID(c), purchaseID, req.ToPurchaseUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, pur)
}

// DELETE /api/v1/purchases/:id
func (h *PurchaseHandler) Delete(c *gin.Context) {
	purchaseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), h.TenantID(c), purchaseID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Register moves a draft to REGISTERED and posts the cost entry.
// POST /api/v1/purchases/:id/register
func (h *PurchaseHandler) Register(c *gin.Context) {
	purchaseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	pur, res, err := h.service.Register(c.Request.Context(), h.TenantID(c), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, pur, res)
}

// Post retries the cost entry of a registered purchase.
// POST /api/v1/purchases/:id/post
func (h *PurchaseHandler) Post(c *gin.Context) {
	purchaseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	res, err := h.service.PostRegistered(c.Request.Context(), h.TenantID(c), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, nil, res)
}

// GET /api/v1/purchases/:id/payments
func (h *PurchaseHandler) Payments(c *gin.Context) {
	purchaseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	list, err := h.service.Payments(c.Request.Context(), h.TenantID(c), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": list})
}

// RecordPayment registers a payment to the supplier.
// POST /api/v1/purchases/:id/payments
func (h *PurchaseHandler) RecordPayment(c *gin.Context) {
	purchaseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, res, err := h.service.RecordPayment(c.Request.Context(), h.TenantID(c), purchaseID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusCreated, p, res)
}

// POST /api/v1/purchases/:id/mark-paid
func (h *PurchaseHandler) MarkPaid(c *gin.Context) {
	purchaseID, date, ok := h.PathIDAndDate(c, "id")
	if !ok {
		return
	}
	pur, res, err := h.service.MarkPaid(c.Request.Context(), h.TenantID(c), purchaseID, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, pur, res)
}

// SettleWithholding pays the retained tax to the authority.
// POST /api/v1/purchases/:id/settle-withholding
func (h *PurchaseHandler) SettleWithholding(c *gin.Context) {
	purchaseID, date, ok := h.PathIDAndDate(c, "id")
	if !ok {
		return
	}
	res, err := h.service.SettleWithholding(c.Request.Context(), h.TenantID(c), purchaseID, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, nil, res)
}

// Void cancels the purchase and reverses what it posted.
// POST /api/v1/purchases/:id/void
func (h *PurchaseHandler) Void(c *gin.Context) {
	purchaseID, date, ok := h.PathIDAndDate(c, "id")
	if !ok {
		return
	}
	pur, res, err := h.service.Void(c.Request.Context(), h.TenantID(c), purchaseID, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, pur, res)
}

// GET /api/v1/purchases/:id/entries
func (h *PurchaseHandler) Entries(c *gin.Context) {
	purchaseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	list, err := h.service.Entries(c.Request.Context(), h.TenantID(c), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": list})
}
