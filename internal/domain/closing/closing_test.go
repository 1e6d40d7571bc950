package closing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/expense"
	"pgcledger/internal/domain/documents/invoice"
	"pgcledger/internal/domain/posting"
)

func spend(t *testing.T, f *apptest.Fixture, amount string) {
	t.Helper()
	_, _, err := f.Services.Expenses.Create(f.Ctx, f.TenantID(), expense.CreateInput{
		Kind:        expense.KindOther,
		Date:        apptest.Date(2024, 6, 1),
		Description: "Manutenção",
		Amount:      apptest.Amount(amount),
	})
	require.NoError(t, err)
}

func sell(t *testing.T, f *apptest.Fixture, amount string) {
	t.Helper()
	customer := f.Customer(t, "Unitel SA")
	inv, err := f.Services.Invoices.Create(f.Ctx, f.TenantID(), invoice.CreateInput{
		CustomerID: customer.ID,
		Date:       apptest.Date(2024, 7, 1),
		Items:      []documents.ItemInput{apptest.Line("Consultoria", "1", amount, "0")},
	})
	require.NoError(t, err)
	_, _, err = f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
}

func TestCloseYear_Profit(t *testing.T) {
	f := apptest.New(t)
	spend(t, f, "500")
	sell(t, f, "800")

	preview, err := f.Services.Closing.Preview(f.Ctx, f.TenantID(), 2024)
	require.NoError(t, err)
	assert.False(t, preview.Closed)
	assert.Equal(t, "500.00", preview.TotalExpenses.StringFixed(2))
	assert.Equal(t, "800.00", preview.TotalRevenues.StringFixed(2))
	assert.Equal(t, "300.00", preview.NetResult.StringFixed(2))

	result, err := f.Services.Closing.CloseYear(f.Ctx, f.TenantID(), 2024)
	require.NoError(t, err)
	assert.Equal(t, posting.StatusPosted, result.Status)
	require.NotNil(t, result.Entry)
	assert.Equal(t, posting.KindClosing, result.Entry.Kind)
	assert.True(t, result.Entry.Date.Equal(apptest.Date(2024, 12, 31)))

	assert.True(t, f.Balance(t, "61").IsZero())
	assert.True(t, f.Balance(t, "71").IsZero())
	assert.Equal(t, "300.00", f.Balance(t, "88").StringFixed(2))

	debit, credit := result.Entry.Totals()
	assert.Equal(t, "800.00", debit.StringFixed(2))
	assert.True(t, debit.Equal(credit))

	is, err := f.Services.Reports.IncomeStatement(f.Ctx, f.TenantID(), 2024)
	require.NoError(t, err)
	assert.Equal(t, "300.00", is.Result.StringFixed(2))
}

func TestCloseYear_Loss(t *testing.T) {
	f := apptest.New(t)
	spend(t, f, "500")

	_, err := f.Services.Closing.CloseYear(f.Ctx, f.TenantID(), 2024)
	require.NoError(t, err)
	assert.Equal(t, "-500.00", f.Balance(t, "88").StringFixed(2))
	assert.True(t, f.Balance(t, "61").IsZero())
}

func TestCloseYear_Once(t *testing.T) {
	f := apptest.New(t)
	spend(t, f, "500")
	sell(t, f, "800")

	first, err := f.Services.Closing.CloseYear(f.Ctx, f.TenantID(), 2024)
	require.NoError(t, err)

	preview, err := f.Services.Closing.Preview(f.Ctx, f.TenantID(), 2024)
	require.NoError(t, err)
	assert.True(t, preview.Closed)
	assert.Equal(t, "300.00", preview.NetResult.StringFixed(2))

	second, err := f.Services.Closing.CloseYear(f.Ctx, f.TenantID(), 2024)
	require.NoError(t, err)
	assert.Equal(t, posting.StatusAlreadyPosted, second.Status)
	assert.Equal(t, first.Entry.ID, second.Entry.ID)
	assert.Equal(t, "300.00", f.Balance(t, "88").StringFixed(2))
}

func TestCloseYear_NothingToClose(t *testing.T) {
	f := apptest.New(t)

	_, err := f.Services.Closing.CloseYear(f.Ctx, f.TenantID(), 2023)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
}
