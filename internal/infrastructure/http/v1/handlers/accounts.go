package handlers

import (
	"github.com/gin-gonic/gin"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/infrastructure/http/v1/dto"
)

// AccountHandler manages the company's chart of accounts.
type AccountHandler struct {
	*BaseHandler
	service *chart.Service
}

func NewAccountHandler(base *BaseHandler, service *chart.Service) *AccountHandler {
	return &AccountHandler{BaseHandler: base, service: service}
}

// accountNode is one row of the chart view.
type accountNode struct {
	chart.Account
	Depth  int  `json:"depth"`
	Global bool `json:"global"`
}

// Tree returns the merged chart the company sees, depth first.
// GET /api/v1/accounts/tree
func (h *AccountHandler) Tree(c *gin.Context) {
	tree, err := h.service.View(c.Request.Context(), h.TenantID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	nodes := make([]accountNode, 0, tree.Len())
	tree.Walk(func(acc *chart.Account, depth int) bool {
		nodes = append(nodes, accountNode{Account: *acc, Depth: depth, Global: acc.IsGlobal()})
		return true
	})
	h.OK(c, gin.H{"items": nodes})
}

// scope is the company of the request, or nil for ?scope=global, which
// addresses the template chart.
func (h *AccountHandler) scope(c *gin.Context) *id.ID {
	if c.Query("scope") == "global" {
		return nil
	}
	tenantID := h.TenantID(c)
	return &tenantID
}

// List returns the accounts of one tier in code order.
// GET /api/v1/accounts
func (h *AccountHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), h.scope(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	if list == nil {
		list = []chart.Account{}
	}
	h.OK(c, gin.H{"items": list})
}

// GET /api/v1/accounts/:id
func (h *AccountHandler) Get(c *gin.Context) {
	accountID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	acc, err := h.service.GetByID(c.Request.Context(), h.scope(c), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, acc)
}

// Create normalizes the code and saves the account.
// POST /api/v1/accounts
func (h *AccountHandler) Create(c *gin.Context) {
	h.save(c, false)
}

// PUT /api/v1/accounts/:id
func (h *AccountHandler) Update(c *gin.Context) {
	h.save(c, true)
}

func (h *AccountHandler) save(c *gin.Context, existing bool) {
	var req dto.SaveAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	var accountID *id.ID
	if existing {
		parsed, ok := h.PathID(c, "id")
		if !ok {
			return
		}
		accountID = &parsed
	}
	in, err := req.ToInput(h.TenantID(c), accountID)
	if err != nil {
		h.Invalid(c, "parentId", err)
		return
	}
	in.TenantID = h.scope(c)

	acc, err := h.service.SaveAccount(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	if existing {
		h.OK(c, acc)
		return
	}
	h.Created(c, acc)
}

// Delete removes the account and its subtree unless any of it has postings.
// DELETE /api/v1/accounts/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	accountID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	n, err := h.service.Delete(c.Request.Context(), h.scope(c), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DeleteAccountResponse{Deleted: n})
}

// Import upserts accounts from text lines.
// POST /api/v1/accounts/import
func (h *AccountHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	report, err := h.service.Import(c.Request.Context(), h.scope(c), req.Text)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Initialize copies the template into a company that has no accounts.
// POST /api/v1/accounts/initialize
func (h *AccountHandler) Initialize(c *gin.Context) {
	n, err := h.service.InitializePlan(c.Request.Context(), h.TenantID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.InitializePlanResponse{Copied: n})
}
