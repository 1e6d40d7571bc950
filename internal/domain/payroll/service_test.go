package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/domain/payroll"
	"pgcledger/internal/domain/posting"
)

func newEmployee(t *testing.T, f *apptest.Fixture, name string) *payroll.Employee {
	t.Helper()
	e := &payroll.Employee{
		TenantID:           f.Tenant.ID,
		Name:               name,
		Position:           "Técnico",
		HiredOn:            apptest.Date(2023, 1, 2),
		BaseSalary:         apptest.Amount("150000"),
		MealAllowance:      apptest.Amount("20000"),
		TransportAllowance: apptest.Amount("20000"),
		OtherAllowances:    apptest.Amount("0"),
		Active:             true,
	}
	require.NoError(t, f.Services.Payroll.CreateEmployee(f.Ctx, e))
	return e
}

func TestRunAndPostPayroll(t *testing.T) {
	f := apptest.New(t)
	newEmployee(t, f, "Ana Domingos")

	runs, err := f.Services.Payroll.RunPayroll(f.Ctx, f.Tenant.ID, 3, 2024)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "178541.00", runs[0].Net.StringFixed(2))

	res, err := f.Services.Payroll.PostPayroll(f.Ctx, f.Tenant.ID, 3, 2024)
	require.NoError(t, err)
	require.Equal(t, posting.StatusPosted, res.Status)
	assert.Equal(t, apptest.Date(2024, 3, 31), res.Entry.Date)
	assert.Equal(t, posting.PeriodEvent(2024, 3), res.Entry.Event)
	assert.True(t, res.Entry.IsBalanced())

	assert.Equal(t, "205200.00", f.Balance(t, "64.1").StringFixed(2))
	assert.Equal(t, "26659.00", f.Balance(t, "34.1.1").Neg().StringFixed(2))
	assert.Equal(t, "-178541.00", f.Balance(t, "36.1").StringFixed(2))

	stored, err := f.Services.Payroll.Runs(f.Ctx, f.Tenant.ID, 3, 2024)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Posted)
	require.NotNil(t, stored[0].EntryID)
	assert.Equal(t, res.Entry.ID, *stored[0].EntryID)

	_, err = f.Services.Payroll.PostPayroll(f.Ctx, f.Tenant.ID, 3, 2024)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))

	_, err = f.Services.Payroll.Recalculate(f.Ctx, f.Tenant.ID, stored[0].ID, payroll.Inputs{
		AbsenceHours:     decimal.Zero,
		Overtime50Hours:  decimal.Zero,
		Overtime100Hours: decimal.Zero,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeDocumentPosted))

	again, err := f.Services.Payroll.RunPayroll(f.Ctx, f.Tenant.ID, 3, 2024)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, stored[0].ID, again[0].ID, "posted runs are returned unchanged")
}

func TestPostPayroll_OneEntryPerPeriod(t *testing.T) {
	f := apptest.New(t)
	newEmployee(t, f, "Ana Domingos")

	_, err := f.Services.Payroll.RunPayroll(f.Ctx, f.Tenant.ID, 3, 2024)
	require.NoError(t, err)
	res, err := f.Services.Payroll.PostPayroll(f.Ctx, f.Tenant.ID, 3, 2024)
	require.NoError(t, err)
	require.Equal(t, posting.StatusPosted, res.Status)

	late := newEmployee(t, f, "Carlos Neto")
	runs, err := f.Services.Payroll.RunPayroll(f.Ctx, f.Tenant.ID, 3, 2024)
	require.NoError(t, err)
	require.Len(t, runs, 1, "a posted month takes no new runs")
	assert.NotEqual(t, late.ID, runs[0].EmployeeID)

	_, err = f.Services.Payroll.PostPayroll(f.Ctx, f.Tenant.ID, 3, 2024)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))

	entries, err := f.Services.Posting.EntriesFor(f.Ctx, f.Tenant.ID, posting.SourcePayroll, f.Tenant.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.Entry.ID, entries[0].ID)

	runs, err = f.Services.Payroll.RunPayroll(f.Ctx, f.Tenant.ID, 4, 2024)
	require.NoError(t, err)
	assert.Len(t, runs, 2, "the next month includes everyone")
}

func TestMonthInputs_CountsUnjustifiedAbsence(t *testing.T) {
	f := apptest.New(t)
	e := newEmployee(t, f, "Bruno Sebastião")
	svc := f.Services.Payroll

	require.NoError(t, svc.RecordAbsence(f.Ctx, &payroll.Absence{
		TenantID: f.Tenant.ID, EmployeeID: e.ID, Date: apptest.Date(2024, 4, 3), Hours: decimal.NewFromInt(8),
	}))
	require.NoError(t, svc.RecordAbsence(f.Ctx, &payroll.Absence{
		TenantID: f.Tenant.ID, EmployeeID: e.ID, Date: apptest.Date(2024, 4, 4), Hours: decimal.NewFromInt(8), Justified: true,
	}))
	require.NoError(t, svc.RecordAbsence(f.Ctx, &payroll.Absence{
		TenantID: f.Tenant.ID, EmployeeID: e.ID, Date: apptest.Date(2024, 5, 1), Hours: decimal.NewFromInt(4),
	}))
	require.NoError(t, svc.RecordOvertime(f.Ctx, &payroll.Overtime{
		TenantID: f.Tenant.ID, EmployeeID: e.ID, Date: apptest.Date(2024, 4, 6), Hours: decimal.NewFromInt(3), Tier: payroll.Tier100,
	}))

	in, err := svc.MonthInputs(f.Ctx, f.Tenant.ID, e.ID, 4, 2024)
	require.NoError(t, err)
	assert.Equal(t, "8", in.AbsenceHours.String())
	assert.Equal(t, "3", in.Overtime100Hours.String())
	assert.True(t, in.Overtime50Hours.IsZero())

	err = svc.RecordOvertime(f.Ctx, &payroll.Overtime{
		TenantID: f.Tenant.ID, EmployeeID: e.ID, Date: apptest.Date(2024, 4, 6), Hours: decimal.NewFromInt(1), Tier: "75",
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRunPayroll_InvalidPeriod(t *testing.T) {
	f := apptest.New(t)

	_, err := f.Services.Payroll.RunPayroll(f.Ctx, f.Tenant.ID, 13, 2024)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
