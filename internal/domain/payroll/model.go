// Package payroll keeps employees and their monthly variables, computes
// gross-to-net runs and posts one journal entry per pay period.
package payroll

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
)

// Employee is a person on the payroll of one tenant.
type Employee struct {
	entity.BaseEntity

	TenantID         id.ID     `db:"tenant_id" json:"tenantId"`
	Name             string    `db:"name" json:"name"`
	TaxID            string    `db:"tax_id" json:"taxId,omitempty"`
	SocialSecurityNo string    `db:"social_security_no" json:"socialSecurityNo,omitempty"`
	Position         string    `db:"position" json:"position"`
	HiredOn          time.Time `db:"hired_on" json:"hiredOn"`

	BaseSalary         types.Money `db:"base_salary" json:"baseSalary"`
	MealAllowance      types.Money `db:"meal_allowance" json:"mealAllowance"`
	TransportAllowance types.Money `db:"transport_allowance" json:"transportAllowance"`
	OtherAllowances    types.Money `db:"other_allowances" json:"otherAllowances"`

	Phone   string `db:"phone" json:"phone,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
	Bank    string `db:"bank" json:"bank,omitempty"`
	IBAN    string `db:"iban" json:"iban,omitempty"`

	Active bool `db:"active" json:"active"`
}

// Pay returns the fixed remuneration used by Calculate.
func (e *Employee) Pay() Pay {
	return Pay{
		BaseSalary:         e.BaseSalary,
		MealAllowance:      e.MealAllowance,
		TransportAllowance: e.TransportAllowance,
		OtherAllowances:    e.OtherAllowances,
	}
}

// Validate implements entity.Validatable.
func (e *Employee) Validate(ctx context.Context) error {
	if id.IsNil(e.TenantID) {
		return apperror.NewValidation("tenant is required").WithDetail("field", "tenantId")
	}
	if strings.TrimSpace(e.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if e.HiredOn.IsZero() {
		return apperror.NewValidation("hire date is required").WithDetail("field", "hiredOn")
	}
	for field, v := range map[string]types.Money{
		"baseSalary":         e.BaseSalary,
		"mealAllowance":      e.MealAllowance,
		"transportAllowance": e.TransportAllowance,
		"otherAllowances":    e.OtherAllowances,
	} {
		if v.IsNegative() {
			return apperror.NewValidation("amount must not be negative").WithDetail("field", field)
		}
	}
	return nil
}

// Absence is a number of missed hours on one day.
type Absence struct {
	ID         id.ID           `db:"id" json:"id"`
	TenantID   id.ID           `db:"tenant_id" json:"tenantId"`
	EmployeeID id.ID           `db:"employee_id" json:"employeeId"`
	Date       time.Time       `db:"date" json:"date"`
	Hours      decimal.Decimal `db:"hours" json:"hours"`
	Justified  bool            `db:"justified" json:"justified"`
	Reason     string          `db:"reason" json:"reason,omitempty"`
}

// OvertimeTier is the premium of overtime hours.
type OvertimeTier string

const (
	Tier50  OvertimeTier = "50"  // working days, daytime
	Tier100 OvertimeTier = "100" // nights, weekends, holidays
)

// Overtime is a number of extra hours on one day.
type Overtime struct {
	ID         id.ID           `db:"id" json:"id"`
	TenantID   id.ID           `db:"tenant_id" json:"tenantId"`
	EmployeeID id.ID           `db:"employee_id" json:"employeeId"`
	Date       time.Time       `db:"date" json:"date"`
	Hours      decimal.Decimal `db:"hours" json:"hours"`
	Tier       OvertimeTier    `db:"tier" json:"tier"`
	Reason     string          `db:"reason" json:"reason,omitempty"`
	ApprovedBy string          `db:"approved_by" json:"approvedBy,omitempty"`
}

// Run is the payroll of one employee for one month. There is at most one
// run per (employee, month, year).
type Run struct {
	ID           id.ID     `db:"id" json:"id"`
	TenantID     id.ID     `db:"tenant_id" json:"tenantId"`
	EmployeeID   id.ID     `db:"employee_id" json:"employeeId"`
	EmployeeName string    `db:"employee_name" json:"employeeName"`
	Month        int       `db:"month" json:"month"`
	Year         int       `db:"year" json:"year"`
	ProcessedOn  time.Time `db:"processed_on" json:"processedOn"`

	Inputs
	Breakdown

	Posted  bool   `db:"posted" json:"posted"`
	EntryID *id.ID `db:"entry_id" json:"entryId,omitempty"`
}

// Totals aggregates the runs of one period.
type Totals struct {
	Gross          types.Money `json:"gross"`
	EmployeeSocial types.Money `json:"employeeSocial"`
	EmployerSocial types.Money `json:"employerSocial"`
	IRT            types.Money `json:"irt"`
	Net            types.Money `json:"net"`
}

// Summarize adds up runs.
func Summarize(runs []*Run) Totals {
	t := Totals{
		Gross:          types.Zero(),
		EmployeeSocial: types.Zero(),
		EmployerSocial: types.Zero(),
		IRT:            types.Zero(),
		Net:            types.Zero(),
	}
	for _, r := range runs {
		t.Gross = t.Gross.Add(r.Gross)
		t.EmployeeSocial = t.EmployeeSocial.Add(r.EmployeeSocial)
		t.EmployerSocial = t.EmployerSocial.Add(r.EmployerSocial)
		t.IRT = t.IRT.Add(r.IRT)
		t.Net = t.Net.Add(r.Net)
	}
	return t
}

func validPeriod(month, year int) error {
	if month < 1 || month > 12 {
		return apperror.NewValidation("month must be between 1 and 12").WithDetail("month", month)
	}
	if year < 1900 || year > 9999 {
		return apperror.NewValidation("invalid year").WithDetail("year", year)
	}
	return nil
}

// periodBounds returns the first and last day of the month.
func periodBounds(month, year int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}
