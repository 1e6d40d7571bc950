package dto

import (
	"github.com/shopspring/decimal"

	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/payroll"
)

// EmployeeRequest creates or replaces an employee record.
type EmployeeRequest struct {
	Name               string      `json:"name" binding:"required"`
	TaxID              string      `json:"taxId"`
	SocialSecurityNo   string      `json:"socialSecurityNo"`
	Position           string      `json:"position"`
	HiredOn            Date        `json:"hiredOn"`
	BaseSalary         types.Money `json:"baseSalary"`
	MealAllowance      types.Money `json:"mealAllowance"`
	TransportAllowance types.Money `json:"transportAllowance"`
	OtherAllowances    types.Money `json:"otherAllowances"`
	Phone              string      `json:"phone"`
	Address            string      `json:"address"`
	Bank               string      `json:"bank"`
	IBAN               string      `json:"iban"`
	Active             *bool       `json:"active"`
}

// ApplyTo copies the request onto e. Active defaults to true.
func (r *EmployeeRequest) ApplyTo(e *payroll.Employee, tenantID id.ID) {
	e.TenantID = tenantID
	e.Name = r.Name
	e.TaxID = r.TaxID
	e.SocialSecurityNo = r.SocialSecurityNo
	e.Position = r.Position
	e.HiredOn = r.HiredOn.Time
	e.BaseSalary = r.BaseSalary
	e.MealAllowance = r.MealAllowance
	e.TransportAllowance = r.TransportAllowance
	e.OtherAllowances = r.OtherAllowances
	e.Phone = r.Phone
	e.Address = r.Address
	e.Bank = r.Bank
	e.IBAN = r.IBAN
	e.Active = r.Active == nil || *r.Active
}

// AbsenceRequest records missed hours.
type AbsenceRequest struct {
	Date      Date            `json:"date"`
	Hours     decimal.Decimal `json:"hours"`
	Justified bool            `json:"justified"`
	Reason    string          `json:"reason"`
}

func (r *AbsenceRequest) ToAbsence(tenantID, employeeID id.ID) *payroll.Absence {
	return &payroll.Absence{
		TenantID:   tenantID,
		EmployeeID: employeeID,
		Date:       r.Date.Time,
		Hours:      r.Hours,
		Justified:  r.Justified,
		Reason:     r.Reason,
	}
}

// OvertimeRequest records extra hours; tier is "50" or "100".
type OvertimeRequest struct {
	Date       Date                 `json:"date"`
	Hours      decimal.Decimal      `json:"hours"`
	Tier       payroll.OvertimeTier `json:"tier" binding:"required,oneof=50 100"`
	Reason     string               `json:"reason"`
	ApprovedBy string               `json:"approvedBy"`
}

func (r *OvertimeRequest) ToOvertime(tenantID, employeeID id.ID) *payroll.Overtime {
	return &payroll.Overtime{
		TenantID:   tenantID,
		EmployeeID: employeeID,
		Date:       r.Date.Time,
		Hours:      r.Hours,
		Tier:       r.Tier,
		Reason:     r.Reason,
		ApprovedBy: r.ApprovedBy,
	}
}

// RecalculateRequest replaces the monthly inputs of an unposted run.
type RecalculateRequest struct {
	AbsenceHours     decimal.Decimal `json:"absenceHours"`
	Overtime50Hours  decimal.Decimal `json:"overtime50Hours"`
	Overtime100Hours decimal.Decimal `json:"overtime100Hours"`
}

func (r *RecalculateRequest) ToInputs() payroll.Inputs {
	return payroll.Inputs{
		AbsenceHours:     r.AbsenceHours,
		Overtime50Hours:  r.Overtime50Hours,
		Overtime100Hours: r.Overtime100Hours,
	}
}
