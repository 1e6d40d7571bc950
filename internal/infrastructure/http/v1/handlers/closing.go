package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/domain/closing"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

type ClosingHandler struct {
	*BaseHandler
	service *closing.Service
}

func NewClosingHandler(base *BaseHandler, service *closing.Service) *ClosingHandler {
	return &ClosingHandler{BaseHandler: base, service: service}
}

// Preview shows the balances a close would zero.
// GET /api/v1/closing/preview?year=
func (h *ClosingHandler) Preview(c *gin.Context) {
	var req dto.YearRequest
	if !h.BindQuery(c, &req) {
		return
	}
	p, err := h.service.Preview(c.Request.Context(), h.TenantID(c), req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Close posts the closing entry of the year. Closing twice returns the
// existing entry.
// POST /api/v1/closing
func (h *ClosingHandler) Close(c *gin.Context) {
	var req dto.YearRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.service.CloseYear(c.Request.Context(), h.TenantID(c), req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, nil, res)
}
