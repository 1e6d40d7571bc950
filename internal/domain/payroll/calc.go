package payroll

import (
	"github.com/shopspring/decimal"

	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/tax"
)

// Settings are the statutory parameters of the gross-to-net calculation.
type Settings struct {
	// HoursPerMonth is (44 * 52) / 12
	HoursPerMonth decimal.Decimal

	// Social security percentages
	EmployeeRate decimal.Decimal
	EmployerRate decimal.Decimal

	// ExemptionCap limits the IRT-exempt part of each of meal and transport
	ExemptionCap types.Money
}

var (
	overtime50Factor  = decimal.RequireFromString("1.5")
	overtime100Factor = decimal.RequireFromString("2.0")
)

// DefaultSettings returns the LGT parameters.
func DefaultSettings() Settings {
	return Settings{
		HoursPerMonth: decimal.RequireFromString("190.666666667"),
		EmployeeRate:  decimal.NewFromInt(3),
		EmployerRate:  decimal.NewFromInt(8),
		ExemptionCap:  types.NewMoneyFromInt(30000),
	}
}

// Inputs are the monthly variables of one employee.
type Inputs struct {
	AbsenceHours     decimal.Decimal `db:"absence_hours" json:"absenceHours"`
	Overtime50Hours  decimal.Decimal `db:"overtime50_hours" json:"overtime50Hours"`
	Overtime100Hours decimal.Decimal `db:"overtime100_hours" json:"overtime100Hours"`
}

// Breakdown is the result of the gross-to-net calculation.
type Breakdown struct {
	BaseSalary         types.Money `db:"base_salary" json:"baseSalary"`
	MealAllowance      types.Money `db:"meal_allowance" json:"mealAllowance"`
	TransportAllowance types.Money `db:"transport_allowance" json:"transportAllowance"`
	OtherAllowances    types.Money `db:"other_allowances" json:"otherAllowances"`
	OvertimePay        types.Money `db:"overtime_pay" json:"overtimePay"`
	AbsenceDeduction   types.Money `db:"absence_deduction" json:"absenceDeduction"`
	Gross              types.Money `db:"gross" json:"gross"`
	EmployeeSocial     types.Money `db:"employee_social" json:"employeeSocial"`
	EmployerSocial     types.Money `db:"employer_social" json:"employerSocial"`
	TaxableIncome      types.Money `db:"taxable_income" json:"taxableIncome"`
	IRT                types.Money `db:"irt" json:"irt"`
	TotalDeductions    types.Money `db:"total_deductions" json:"totalDeductions"`
	Net                types.Money `db:"net" json:"net"`
}

// Pay is the fixed monthly remuneration of an employee.
type Pay struct {
	BaseSalary         types.Money
	MealAllowance      types.Money
	TransportAllowance types.Money
	OtherAllowances    types.Money
}

// Calculate computes one month. Absence hours reduce base, meal and
// transport pro rata; other allowances are never reduced. Social security
// and IRT are rounded up to whole units. Stored amounts are rounded to
// cents.
func Calculate(pay Pay, in Inputs, s Settings, irt tax.Table) Breakdown {
	hourly := pay.BaseSalary.Div(s.HoursPerMonth)
	factor := in.AbsenceHours.Div(s.HoursPerMonth)

	absenceBase := pay.BaseSalary.Mul(factor)
	base := pay.BaseSalary.Sub(absenceBase)
	meal := pay.MealAllowance.Sub(pay.MealAllowance.Mul(factor))
	transport := pay.TransportAllowance.Sub(pay.TransportAllowance.Mul(factor))

	overtime := hourly.Mul(in.Overtime50Hours).Mul(overtime50Factor).
		Add(hourly.Mul(in.Overtime100Hours).Mul(overtime100Factor))

	gross := types.Sum(base, meal, transport, pay.OtherAllowances, overtime)

	employee := types.CeilUnit(types.Percent(gross, s.EmployeeRate))
	employer := types.CeilUnit(types.Percent(gross, s.EmployerRate))

	mealExempt := decimal.Min(meal, s.ExemptionCap)
	transportExempt := decimal.Min(transport, s.ExemptionCap)
	taxable := types.PositivePart(gross.Sub(employee).Sub(mealExempt).Sub(transportExempt))

	irtDue := irt.Compute(taxable)

	b := Breakdown{
		BaseSalary:         types.Round2(base),
		MealAllowance:      types.Round2(meal),
		TransportAllowance: types.Round2(transport),
		OtherAllowances:    types.Round2(pay.OtherAllowances),
		OvertimePay:        types.Round2(overtime),
		AbsenceDeduction:   types.Round2(absenceBase),
		Gross:              types.Round2(gross),
		EmployeeSocial:     employee,
		EmployerSocial:     employer,
		TaxableIncome:      types.Round2(taxable),
		IRT:                irtDue,
	}
	b.TotalDeductions = employee.Add(irtDue)
	b.Net = b.Gross.Sub(b.TotalDeductions)
	return b
}
