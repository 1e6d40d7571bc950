package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/tenant"
)

// CreateCompanyRequest registers a company. Empty fields take the Angola
// defaults (AOA, USD, current year, general chart).
type CreateCompanyRequest struct {
	Name                string               `json:"name" binding:"required"`
	TaxID               string               `json:"taxId" binding:"required"`
	Address             string               `json:"address"`
	Country             string               `json:"country"`
	ExerciseYear        int                  `json:"exerciseYear" binding:"omitempty,min=1900,max=9999"`
	ChartTemplate       tenant.ChartTemplate `json:"chartTemplate" binding:"omitempty,oneof=PGC_GERAL PGC_SIMP CUSTOM"`
	BaseCurrency        string               `json:"baseCurrency"`
	ReferenceCurrency   string               `json:"referenceCurrency"`
	DefaultExchangeRate decimal.Decimal      `json:"defaultExchangeRate"`
}

func (r *CreateCompanyRequest) ToInput() tenant.CreateTenantInput {
	return tenant.CreateTenantInput{
		Name:                r.Name,
		TaxID:               r.TaxID,
		Address:             r.Address,
		Country:             r.Country,
		ExerciseYear:        r.ExerciseYear,
		ChartTemplate:       r.ChartTemplate,
		BaseCurrency:        r.BaseCurrency,
		ReferenceCurrency:   r.ReferenceCurrency,
		DefaultExchangeRate: r.DefaultExchangeRate,
	}
}

// CompanyCreatedResponse is the company and the size of its new chart.
type CompanyCreatedResponse struct {
	Company        *tenant.Tenant `json:"company"`
	AccountsCopied int            `json:"accountsCopied"`
}

// SetRateRequest records an exchange rate valid from a day.
type SetRateRequest struct {
	ValidFrom Date            `json:"validFrom"`
	Rate      decimal.Decimal `json:"rate"`
}

// ConvertResponse is a base-currency amount in the reference currency.
type ConvertResponse struct {
	Date      string          `json:"date"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
	Converted decimal.Decimal `json:"converted"`
}

func NewConvertResponse(day time.Time, rate, amount, converted decimal.Decimal) ConvertResponse {
	return ConvertResponse{
		Date:      day.Format(time.DateOnly),
		Rate:      rate,
		Amount:    amount,
		Converted: converted,
	}
}
