// Package tenant describes the companies that share one ledger database.
// Every business row carries a tenant_id; only the global template chart
// has none.
package tenant

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
)

// Status represents tenant lifecycle state.
type Status string

const (
	// StatusActive - tenant can accept requests
	StatusActive Status = "active"

	// StatusSuspended - tenant is temporarily disabled
	StatusSuspended Status = "suspended"
)

// ChartTemplate names the chart a company started from.
type ChartTemplate string

const (
	TemplateGeneral    ChartTemplate = "PGC_GERAL"
	TemplateSimplified ChartTemplate = "PGC_SIMP"
	TemplateCustom     ChartTemplate = "CUSTOM"
)

// Tenant is one company using the ledger.
type Tenant struct {
	ID                  id.ID           `db:"id" json:"id"`
	Name                string          `db:"name" json:"name"`
	TaxID               string          `db:"tax_id" json:"taxId"`
	Address             string          `db:"address" json:"address,omitempty"`
	Country             string          `db:"country" json:"country"`
	ExerciseYear        int             `db:"exercise_year" json:"exerciseYear"`
	ChartTemplate       ChartTemplate   `db:"chart_template" json:"chartTemplate"`
	BaseCurrency        string          `db:"base_currency" json:"baseCurrency"`
	ReferenceCurrency   string          `db:"reference_currency" json:"referenceCurrency"`
	DefaultExchangeRate decimal.Decimal `db:"default_exchange_rate" json:"defaultExchangeRate"`
	Status              Status          `db:"status" json:"status"`
	CreatedAt           time.Time       `db:"created_at" json:"createdAt"`
}

// IsActive returns true if tenant can accept requests.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// CreateTenantInput contains data for registering a new company.
type CreateTenantInput struct {
	Name                string
	TaxID               string
	Address             string
	Country             string
	ExerciseYear        int
	ChartTemplate       ChartTemplate
	BaseCurrency        string
	ReferenceCurrency   string
	DefaultExchangeRate decimal.Decimal
}

// Validate checks if input is valid and fills Angola defaults.
func (i *CreateTenantInput) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(i.TaxID) == "" {
		return apperror.NewValidation("tax id is required").WithDetail("field", "taxId")
	}
	if i.ExerciseYear == 0 {
		i.ExerciseYear = time.Now().Year()
	}
	if i.ExerciseYear < 1900 || i.ExerciseYear > 9999 {
		return apperror.NewValidation("invalid exercise year").WithDetail("exerciseYear", i.ExerciseYear)
	}
	if i.Country == "" {
		i.Country = "Angola"
	}
	if i.ChartTemplate == "" {
		i.ChartTemplate = TemplateGeneral
	}
	switch i.ChartTemplate {
	case TemplateGeneral, TemplateSimplified, TemplateCustom:
	default:
		return apperror.NewValidation("unknown chart template").WithDetail("chartTemplate", i.ChartTemplate)
	}
	if i.BaseCurrency == "" {
		i.BaseCurrency = "AOA"
	}
	if i.ReferenceCurrency == "" {
		i.ReferenceCurrency = "USD"
	}
	if i.DefaultExchangeRate.IsZero() {
		i.DefaultExchangeRate = decimal.NewFromInt(1)
	}
	if !i.DefaultExchangeRate.IsPositive() {
		return apperror.NewValidation("exchange rate must be positive").WithDetail("field", "defaultExchangeRate")
	}
	return nil
}

// Build converts the input into a new active tenant.
func (i *CreateTenantInput) Build() *Tenant {
	return &Tenant{
		ID:                  id.New(),
		Name:                i.Name,
		TaxID:               strings.TrimSpace(i.TaxID),
		Address:             i.Address,
		Country:             i.Country,
		ExerciseYear:        i.ExerciseYear,
		ChartTemplate:       i.ChartTemplate,
		BaseCurrency:        i.BaseCurrency,
		ReferenceCurrency:   i.ReferenceCurrency,
		DefaultExchangeRate: i.DefaultExchangeRate,
		Status:              StatusActive,
		CreatedAt:           time.Now().UTC(),
	}
}
