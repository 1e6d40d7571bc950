package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pgcledger/internal/domain/exchange"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

// ExchangeHandler maintains the company's reference-currency rates.
type ExchangeHandler struct {
	*BaseHandler
	service *exchange.Service
}

func NewExchangeHandler(base *BaseHandler, service *exchange.Service) *ExchangeHandler {
	return &ExchangeHandler{BaseHandler: base, service: service}
}

// GET /api/v1/exchange-rates
func (h *ExchangeHandler) History(c *gin.Context) {
	list, err := h.service.History(c.Request.Context(), h.TenantID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	if list == nil {
		list = []*exchange.Rate{}
	}
	h.OK(c, gin.H{"items": list})
}

// POST /api/v1/exchange-rates
func (h *ExchangeHandler) Set(c *gin.Context) {
	var req dto.SetRateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.ValidFrom.IsZero() {
		h.Invalid(c, "validFrom", errors.New("required"))
		return
	}
	r, err := h.service.Set(c.Request.Context(), h.TenantID(c), req.ValidFrom.Time, req.Rate)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, r)
}

// DELETE /api/v1/exchange-rates/:id
func (h *ExchangeHandler) Delete(c *gin.Context) {
	rateID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), h.TenantID(c), rateID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Convert returns the rate in force on a day and, with ?amount=, the
// amount converted at it.
// GET /api/v1/exchange-rates/convert?date=&amount=
func (h *ExchangeHandler) Convert(c *gin.Context) {
	day := dto.DateRequest{}.Or(time.Now().UTC())
	if raw := c.Query("date"); raw != "" {
		d, err := dto.ParseDate(raw)
		if err != nil {
			h.Invalid(c, "date", err)
			return
		}
		day = d.Time
	}
	amount := decimal.Zero
	if raw := c.Query("amount"); raw != "" {
		a, err := decimal.NewFromString(raw)
		if err != nil {
			h.Invalid(c, "amount", err)
			return
		}
		amount = a
	}

	ctx := c.Request.Context()
	rate, err := h.service.RateAt(ctx, h.TenantID(c), day)
	if err != nil {
		h.Error(c, err)
		return
	}
	converted, err := h.service.Convert(ctx, h.TenantID(c), day, amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewConvertResponse(day, rate, amount, converted))
}
