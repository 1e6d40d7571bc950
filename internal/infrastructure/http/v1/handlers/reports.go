package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/domain/reports"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

// ReportHandler serves read-only statements computed from the journal.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

func (h *ReportHandler) period(c *gin.Context) (reports.Period, bool) {
	var req dto.PeriodRequest
	if !h.BindQuery(c, &req) {
		return reports.Period{}, false
	}
	from, to, err := dto.ParsePeriod(req.From, req.To)
	if err != nil {
		h.Invalid(c, "period", err)
		return reports.Period{}, false
	}
	return reports.Period{From: from, To: to}, true
}

// day reads a date query parameter, defaulting to today.
func (h *ReportHandler) day(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return dto.DateRequest{}.Or(time.Now().UTC()), true
	}
	d, err := dto.ParseDate(raw)
	if err != nil {
		h.Invalid(c, key, err)
		return time.Time{}, false
	}
	return d.Time, true
}

// GET /api/v1/reports/trial-balance?from=&to=
func (h *ReportHandler) TrialBalance(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	tb, err := h.service.TrialBalance(c.Request.Context(), h.TenantID(c), p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, tb)
}

// GET /api/v1/reports/accounts/:id/balance?from=&to=
func (h *ReportHandler) Balance(c *gin.Context) {
	accountID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	p, ok := h.period(c)
	if !ok {
		return
	}
	b, err := h.service.Balance(c.Request.Context(), h.TenantID(c), accountID, p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// GET /api/v1/reports/accounts/:id/ledger?from=&to=
func (h *ReportHandler) GeneralLedger(c *gin.Context) {
	accountID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	p, ok := h.period(c)
	if !ok {
		return
	}
	gl, err := h.service.GeneralLedger(c.Request.Context(), h.TenantID(c), accountID, p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gl)
}

// GET /api/v1/reports/income-statement?year=
func (h *ReportHandler) IncomeStatement(c *gin.Context) {
	var req dto.YearRequest
	if !h.BindQuery(c, &req) {
		return
	}
	st, err := h.service.IncomeStatement(c.Request.Context(), h.TenantID(c), req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, st)
}

// GET /api/v1/reports/balance-sheet?asOf=
func (h *ReportHandler) BalanceSheet(c *gin.Context) {
	asOf, ok := h.day(c, "asOf")
	if !ok {
		return
	}
	bs, err := h.service.BalanceSheet(c.Request.Context(), h.TenantID(c), asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bs)
}

// GET /api/v1/reports/results-trial-balance?to=
func (h *ReportHandler) ResultsTrialBalance(c *gin.Context) {
	to, ok := h.day(c, "to")
	if !ok {
		return
	}
	r, err := h.service.ResultsTrialBalance(c.Request.Context(), h.TenantID(c), to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// GET /api/v1/reports/vat?year=&month=
func (h *ReportHandler) VATMap(c *gin.Context) {
	var req dto.MonthRequest
	if !h.BindQuery(c, &req) {
		return
	}
	m, err := h.service.VATMap(c.Request.Context(), h.TenantID(c), req.Year, req.Month)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// GET /api/v1/reports/journal?from=&to=
func (h *ReportHandler) Journal(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	j, err := h.service.Journal(c.Request.Context(), h.TenantID(c), p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, j)
}

// GET /api/v1/reports/parties/:id/statement?from=&to=
func (h *ReportHandler) PartyStatement(c *gin.Context) {
	partyID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	p, ok := h.period(c)
	if !ok {
		return
	}
	st, err := h.service.PartyStatement(c.Request.Context(), h.TenantID(c), partyID, p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, st)
}
