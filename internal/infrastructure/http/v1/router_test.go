package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app/apptest"
	"pgcledger/internal/infrastructure/http/v1/middleware"
	"pgcledger/pkg/logger"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	tenant string
}

func newAPI(t *testing.T) (*apiClient, *apptest.Fixture) {
	t.Helper()
	f := apptest.New(t)
	router := NewRouter(RouterConfig{
		Services: f.Services,
		Tenants:  f.Store.Tenants(),
		Logger:   logger.Nop(),
	})
	return &apiClient{t: t, router: router, tenant: f.TenantID().String()}, f
}

func (a *apiClient) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if a.tenant != "" {
		req.Header.Set(middleware.TenantHeader, a.tenant)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func TestHealthLive(t *testing.T) {
	api, _ := newAPI(t)
	w, body := api.do(http.MethodGet, "/health/live", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestTenantHeader(t *testing.T) {
	api, _ := newAPI(t)

	api.tenant = ""
	w, body := api.do(http.MethodGet, "/api/v1/accounts", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	api.tenant = "not-a-uuid"
	w, _ = api.do(http.MethodGet, "/api/v1/accounts", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	api.tenant = uuid.NewString()
	w, _ = api.do(http.MethodGet, "/api/v1/accounts", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuspendedCompanyIsForbidden(t *testing.T) {
	api, f := newAPI(t)

	w, _ := api.do(http.MethodPost, "/api/v1/companies/"+f.TenantID().String()+"/suspend", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/accounts", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateCompanyCopiesChart(t *testing.T) {
	api, _ := newAPI(t)
	api.tenant = ""

	w, body := api.do(http.MethodPost, "/api/v1/companies", map[string]any{
		"name":  "Palanca Comércio, SA",
		"taxId": "5417000099",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Greater(t, body["accountsCopied"], float64(0))

	company := body["company"].(map[string]any)
	api.tenant = company["id"].(string)

	w, body = api.do(http.MethodGet, "/api/v1/accounts/tree", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]any)
	require.NotEmpty(t, items)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(0), first["depth"])
}

func TestAccountSaveNormalizesCode(t *testing.T) {
	api, _ := newAPI(t)

	w, body := api.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"code":        "6211",
		"description": "Subcontratos de obra",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "62.1.1", body["code"])

	w, _ = api.do(http.MethodGet, "/api/v1/accounts/"+body["id"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/accounts/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceLifecycle(t *testing.T) {
	api, f := newAPI(t)
	customer := f.Customer(t, "Sonangol EP")

	w, body := api.do(http.MethodPost, "/api/v1/invoices", map[string]any{
		"partyId": customer.ID.String(),
		"date":    "2024-03-10",
		"items": []map[string]any{
			{"description": "Consultoria", "quantity": "1", "unitPrice": "1000", "taxRate": "14"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "DRAFT", body["state"])
	invoiceID := body["id"].(string)

	w, body = api.do(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/issue", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ISSUED", body["data"].(map[string]any)["state"])
	assert.Equal(t, "POSTED", body["posting"].(map[string]any)["status"])

	// Retrying the same event finds the existing entry.
	w, body = api.do(http.MethodPost, "/api/v1/invoices/"+invoiceID+"/post", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ALREADY_POSTED", body["posting"].(map[string]any)["status"])

	w, body = api.do(http.MethodGet, "/api/v1/invoices/"+invoiceID+"/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["items"], 1)

	w, body = api.do(http.MethodGet, "/api/v1/reports/trial-balance?from=2024-01-01&to=2024-12-31", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, body["totalDebit"], body["totalCredit"])

	// Issued invoices are no longer editable.
	w, _ = api.do(http.MethodDelete, "/api/v1/invoices/"+invoiceID, nil)
	assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest)
}

func TestManualEntryMustBalance(t *testing.T) {
	api, f := newAPI(t)
	cash := f.Account(t, "11.1")
	bank := f.Account(t, "12.1")

	w, _ := api.do(http.MethodPost, "/api/v1/journal", map[string]any{
		"date":        "2024-01-02",
		"description": "Depósito",
		"lines": []map[string]any{
			{"accountId": bank.ID.String(), "side": "DEBIT", "amount": "5000"},
			{"accountId": cash.ID.String(), "side": "CREDIT", "amount": "4000"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := api.do(http.MethodPost, "/api/v1/journal", map[string]any{
		"date":        "2024-01-02",
		"description": "Depósito",
		"lines": []map[string]any{
			{"accountId": bank.ID.String(), "side": "DEBIT", "amount": "5000"},
			{"accountId": cash.ID.String(), "side": "CREDIT", "amount": "5000"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entryID := body["id"].(string)

	w, _ = api.do(http.MethodGet, "/api/v1/journal/"+entryID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// No audit reader configured.
	w, _ = api.do(http.MethodGet, "/api/v1/journal/"+entryID+"/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaxRoutesRunWithoutTenant(t *testing.T) {
	api, _ := newAPI(t)
	api.tenant = ""

	w, body := api.do(http.MethodGet, "/api/v1/tax/irt-brackets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["items"])

	w, body = api.do(http.MethodGet, "/api/v1/tax/irt?income=50000", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, body, "irt")
}
