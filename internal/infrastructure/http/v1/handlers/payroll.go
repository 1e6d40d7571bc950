package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/domain/payroll"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

// PayrollHandler manages employees, their monthly inputs and payroll runs.
type PayrollHandler struct {
	*BaseHandler
	service *payroll.Service
}

func NewPayrollHandler(base *BaseHandler, service *payroll.Service) *PayrollHandler {
	return &PayrollHandler{BaseHandler: base, service: service}
}

// ListEmployees returns active employees unless ?all=true.
// GET /api/v1/employees
func (h *PayrollHandler) ListEmployees(c *gin.Context) {
	list, err := h.service.ListEmployees(c.Request.Context(), h.TenantID(c), c.Query("all") != "true")
	if err != nil {
		h.Error(c, err)
		return
	}
	if list == nil {
		list = []*payroll.Employee{}
	}
	h.OK(c, gin.H{"items": list})
}

// GET /api/v1/employees/:id
func (h *PayrollHandler) GetEmployee(c *gin.Context) {
	employeeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	e, err := h.service.GetEmployee(c.Request.Context(), h.TenantID(c), employeeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// POST /api/v1/employees
func (h *PayrollHandler) CreateEmployee(c *gin.Context) {
	var req dto.EmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	e := &payroll.Employee{}
	req.ApplyTo(e, h.TenantID(c))
	if err := h.service.CreateEmployee(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// PUT /api/v1/employees/:id
func (h *PayrollHandler) UpdateEmployee(c *gin.Context) {
	employeeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.EmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	e, err := h.service.GetEmployee(ctx, h.TenantID(c), employeeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(e, h.TenantID(c))
	if err := h.service.UpdateEmployee(ctx, e); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// POST /api/v1/employees/:id/absences
func (h *PayrollHandler) RecordAbsence(c *gin.Context) {
	employeeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.AbsenceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	a := req.ToAbsence(h.TenantID(c), employeeID)
	if err := h.service.RecordAbsence(c.Request.Context(), a); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, a)
}

// POST /api/v1/employees/:id/overtime
func (h *PayrollHandler) RecordOvertime(c *gin.Context) {
	employeeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.OvertimeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	o := req.ToOvertime(h.TenantID(c), employeeID)
	if err := h.service.RecordOvertime(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, o)
}

// Run computes the month for every active employee. Runs already posted
// are left alone.
// POST /api/v1/payroll/runs
func (h *PayrollHandler) Run(c *gin.Context) {
	var req dto.MonthRequest
	if !h.BindJSON(c, &req) {
		return
	}
	runs, err := h.service.RunPayroll(c.Request.Context(), h.TenantID(c), req.Month, req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, gin.H{"items": runs})
}

// GET /api/v1/payroll/runs?month=&year=
func (h *PayrollHandler) Runs(c *gin.Context) {
	var req dto.MonthRequest
	if !h.BindQuery(c, &req) {
		return
	}
	runs, err := h.service.Runs(c.Request.Context(), h.TenantID(c), req.Month, req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	if runs == nil {
		runs = []*payroll.Run{}
	}
	h.OK(c, gin.H{"items": runs})
}

// Recalculate replaces the inputs of one unposted run.
// PUT /api/v1/payroll/runs/:id
func (h *PayrollHandler) Recalculate(c *gin.Context) {
	runID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.RecalculateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	run, err := h.service.Recalculate(c.Request.Context(), h.TenantID(c), runID, req.ToInputs())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, run)
}

// Post books the month's salaries, withholdings and social security.
// POST /api/v1/payroll/post
func (h *PayrollHandler) Post(c *gin.Context) {
	var req dto.MonthRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.service.PostPayroll(c.Request.Context(), h.TenantID(c), req.Month, req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, nil, res)
}
