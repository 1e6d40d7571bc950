package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/domain/documents/expense"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

type ExpenseHandler struct {
	*BaseHandler
	service *expense.Service
}

func NewExpenseHandler(base *BaseHandler, service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{BaseHandler: base, service: service}
}

// GET /api/v1/expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	var req dto.ExpenseListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.Filter()
	if err != nil {
		h.Invalid(c, "period", err)
		return
	}
	list, err := h.service.List(c.Request.Context(), h.TenantID(c), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if list == nil {
		list = []*expense.Expense{}
	}
	h.OK(c, gin.H{"items": list})
}

// GET /api/v1/expenses/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
	expenseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	e, err := h.service.GetByID(c.Request.Context(), h.TenantID(c), expenseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// Create records the expense and posts it in one call.
// POST /api/v1/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Invalid(c, "supplierId", err)
		return
	}
	e, res, err := h.service.Create(c.Request.Context(), h.TenantID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusCreated, e, res)
}

// Post retries an expense whose posting was skipped.
// POST /api/v1/expenses/:id/post
func (h *ExpenseHandler) Post(c *gin.Context) {
	expenseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	res, err := h.service.Post(c.Request.Context(), h.TenantID(c), expenseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Posted(c, http.StatusOK, nil, res)
}
