package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/domain/documents/invoice"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler drives sales invoices through their lifecycle. Every
// transition responds with the document and what it posted.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.DocumentListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.InvoiceFilter()
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

// GET /api/v1/invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	inv, err := h.service.GetByID(c.Request.Context(), h.TenantID(c), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// Create stores a draft.
// POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CommercialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInvoiceCreate()
	if err != nil {
		h.Invalid(c, "partyId", err)
		return
	}
	inv, err := h.service.Create(c.Request.Context(), h.TenantID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, inv)
}

// Update edits a draft.
// PUT /api/v1/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	invoiceID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCommercialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.service.Update(c.Request.Context(), h.TenantID(c), invoiceID, req.ToInvoiceUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invoiceID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), h.TenantID(c), invoiceID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Issue moves a draft to ISSUED and posts the revenue entry.
// POST /api/v1/invoices/:id/issue
func (h *InvoiceHandler) Issue(c *gin.Context) {
	invoiceID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	inv, res, err := h.service.Issue(c.Request.Context(), h.TenantID(c), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, inv, res)
}

// Post retries the revenue entry of an issued invoice.
// POST /api/v1/invoices/:id/post
func (h *InvoiceHandler) Post(c *gin.Context) {
	invoiceID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	res, err := h.service.PostIssued(c.Request.Context(), h.TenantID(c), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, nil, res)
}

// GET /api/v1/invoices/:id/payments
func (h *InvoiceHandler) Payments(c *gin.Context) {
	invoiceID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	list, err := h.service.Payments(c.Request.Context(), h.TenantID(c), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": list})
}

// RecordPayment registers a receipt against an issued invoice.
// POST /api/v1/invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	invoiceID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, res, err := h.service.RecordPayment(c.Request.Context(), h.TenantID(c), invoiceID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusCreated, p, res)
}

// POST /api/v1/invoices/:id/mark-paid
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	invoiceID, date, ok := h.PathIDAndDate(c, "id")
	if !ok {
		return
	}
	inv, res, err := h.service.MarkPaid(c.Request.Context(), h.TenantID(c), invoiceID, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, inv, res)
}

// ConfirmWithholding posts the withholding the customer certified.
// POST /api/v1/invoices/:id/confirm-withholding
func (h *InvoiceHandler) ConfirmWithholding(c *gin.Context) {
	invoiceID, date, ok := h.PathIDAndDate(c, "id")
	if !ok {
		return
	}
	res, err := h.service.ConfirmWithholding(c.Request.Context(), h.TenantID(c), invoiceID, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, nil, res)
}

// Void cancels the invoice and reverses what it posted.
// POST /api/v1/invoices/:id/void
func (h *InvoiceHandler) Void(c *gin.Context) {
	invoiceID, date, ok := h.PathIDAndDate(c, "id")
	if !ok {
		return
	}
	inv, res, err := h.service.Void(c.Request.Context(), h.TenantID(c), invoiceID, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, inv, res)
}

// GET /api/v1/invoices/:id/entries
func (h *InvoiceHandler) Entries(c *gin.Context) {
	invoiceID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	list, err := h.service.Entries(c.Request.Context(), h.TenantID(c), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": list})
}
