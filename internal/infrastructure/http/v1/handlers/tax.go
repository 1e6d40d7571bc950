package handlers

import (
	"github.com/gin-gonic/gin"

	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/tax"
)

// TaxHandler edits the global IRT table and tax rates. Its routes run
// without a tenant.
type TaxHandler struct {
	*BaseHandler
	service *tax.Service
}

func NewTaxHandler(base *BaseHandler, service *tax.Service) *TaxHandler {
	return &TaxHandler{BaseHandler: base, service: service}
}

// GET /api/v1/tax/irt-brackets
func (h *TaxHandler) Brackets(c *gin.Context) {
	t, err := h.service.Brackets(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": t})
}

// ReplaceBrackets swaps the whole table.
// PUT /api/v1/tax/irt-brackets
func (h *TaxHandler) ReplaceBrackets(c *gin.Context) {
	var req struct {
		Items tax.Table `json:"items" binding:"required,min=1"`
	}
	if !h.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if err := h.service.ReplaceBrackets(ctx, req.Items); err != nil {
		h.Error(c, err)
		return
	}
	h.Brackets(c)
}

// POST /api/v1/tax/irt-brackets/reset
func (h *TaxHandler) ResetBrackets(c *gin.Context) {
	if err := h.service.ResetBrackets(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	h.Brackets(c)
}

// ComputeIRT returns the tax withheld on ?income=.
// GET /api/v1/tax/irt?income=
func (h *TaxHandler) ComputeIRT(c *gin.Context) {
	var req struct {
		Income string `form:"income" binding:"required"`
	}
	if !h.BindQuery(c, &req) {
		return
	}
	income, err := types.NewMoneyFromString(req.Income)
	if err != nil {
		h.Invalid(c, "income", err)
		return
	}
	irt, err := h.service.ComputeIRT(c.Request.Context(), income)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"income": income, "irt": irt})
}

// GET /api/v1/tax/rates
func (h *TaxHandler) Rates(c *gin.Context) {
	rates, err := h.service.Rates(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	if rates == nil {
		rates = []tax.Rate{}
	}
	h.OK(c, gin.H{"items": rates})
}

// POST /api/v1/tax/rates/reset
func (h *TaxHandler) ResetRates(c *gin.Context) {
	if err := h.service.ResetRates(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	h.Rates(c)
}
