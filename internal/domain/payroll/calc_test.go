package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/tax"
)

func money(s string) types.Money { return types.MustMoney(s) }

func TestCalculate_Plain(t *testing.T) {
	pay := Pay{
		BaseSalary:         money("150000"),
		MealAllowance:      money("20000"),
		TransportAllowance: money("20000"),
		OtherAllowances:    types.Zero(),
	}
	in := Inputs{AbsenceHours: decimal.Zero, Overtime50Hours: decimal.Zero, Overtime100Hours: decimal.Zero}

	b := Calculate(pay, in, DefaultSettings(), tax.DefaultBrackets())

	assert.Equal(t, "190000.00", b.Gross.StringFixed(2))
	assert.Equal(t, "5700", b.EmployeeSocial.String())
	assert.Equal(t, "15200", b.EmployerSocial.String())
	assert.Equal(t, "144300.00", b.TaxableIncome.StringFixed(2))
	assert.Equal(t, "5759", b.IRT.String())
	assert.Equal(t, "11459.00", b.TotalDeductions.StringFixed(2))
	assert.Equal(t, "178541.00", b.Net.StringFixed(2))
}

func TestCalculate_AbsenceAndOvertime(t *testing.T) {
	settings := Settings{
		HoursPerMonth: decimal.NewFromInt(200),
		EmployeeRate:  decimal.NewFromInt(3),
		EmployerRate:  decimal.NewFromInt(8),
		ExemptionCap:  money("30000"),
	}
	pay := Pay{
		BaseSalary:         money("200000"),
		MealAllowance:      money("10000"),
		TransportAllowance: types.Zero(),
		OtherAllowances:    money("5000"),
	}
	in := Inputs{
		AbsenceHours:     decimal.NewFromInt(20),
		Overtime50Hours:  decimal.NewFromInt(2),
		Overtime100Hours: decimal.NewFromInt(1),
	}

	b := Calculate(pay, in, settings, tax.DefaultBrackets())

	assert.Equal(t, "180000.00", b.BaseSalary.StringFixed(2))
	assert.Equal(t, "9000.00", b.MealAllowance.StringFixed(2))
	assert.Equal(t, "5000.00", b.OtherAllowances.StringFixed(2), "other allowances are never reduced")
	assert.Equal(t, "5000.00", b.OvertimePay.StringFixed(2))
	assert.Equal(t, "20000.00", b.AbsenceDeduction.StringFixed(2))
	assert.Equal(t, "199000.00", b.Gross.StringFixed(2))
	assert.Equal(t, "5970", b.EmployeeSocial.String())
	assert.Equal(t, "15920", b.EmployerSocial.String())
	assert.Equal(t, "184030.00", b.TaxableIncome.StringFixed(2))
	assert.Equal(t, "17945", b.IRT.String())
	assert.Equal(t, "175085.00", b.Net.StringFixed(2))
}

func TestCalculate_ExemptionCap(t *testing.T) {
	pay := Pay{
		BaseSalary:         money("100000"),
		MealAllowance:      money("50000"),
		TransportAllowance: types.Zero(),
		OtherAllowances:    types.Zero(),
	}
	in := Inputs{AbsenceHours: decimal.Zero, Overtime50Hours: decimal.Zero, Overtime100Hours: decimal.Zero}

	b := Calculate(pay, in, DefaultSettings(), tax.DefaultBrackets())

	// 150000 - 4500 social - 30000 capped meal exemption
	assert.Equal(t, "115500.00", b.TaxableIncome.StringFixed(2))
}

func TestSummarize(t *testing.T) {
	runs := []*Run{
		{Breakdown: Breakdown{Gross: money("100"), EmployeeSocial: money("3"), EmployerSocial: money("8"), IRT: money("1"), Net: money("96")}},
		{Breakdown: Breakdown{Gross: money("200"), EmployeeSocial: money("6"), EmployerSocial: money("16"), IRT: money("2"), Net: money("192")}},
	}
	tot := Summarize(runs)
	assert.Equal(t, "300", tot.Gross.String())
	assert.Equal(t, "24", tot.EmployerSocial.String())
	assert.Equal(t, "288", tot.Net.String())
}
