package expense_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/expense"
	"pgcledger/internal/domain/posting"
)

func TestCreate_PostsAgainstCash(t *testing.T) {
	f := apptest.New(t)

	e, result, err := f.Services.Expenses.Create(f.Ctx, f.TenantID(), expense.CreateInput{
		Kind:        expense.KindOther,
		Date:        apptest.Date(2024, 2, 12),
		Description: "Combustível gerador",
		Amount:      apptest.Amount("25000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "DP/2024/00001", e.Number)
	assert.Equal(t, documents.MethodCash, e.Method)
	assert.Equal(t, posting.StatusPosted, result.Status)
	require.NotNil(t, e.EntryID)

	assert.Equal(t, "25000.00", f.Balance(t, "61").StringFixed(2))
	assert.Equal(t, "-25000.00", f.Balance(t, "11.1").StringFixed(2))

	again, err := f.Services.Expenses.Post(f.Ctx, f.TenantID(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, posting.StatusAlreadyPosted, again.Status)
}

func TestCreate_SupplierExpense(t *testing.T) {
	f := apptest.New(t)
	supplier := f.Supplier(t, "ENDE")

	_, _, err := f.Services.Expenses.Create(f.Ctx, f.TenantID(), expense.CreateInput{
		Kind:        expense.KindSupplier,
		Date:        apptest.Date(2024, 2, 12),
		Description: "Energia fevereiro",
		Amount:      apptest.Amount("18000"),
		Method:      documents.MethodBank,
		SupplierID:  &supplier.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "-18000.00", f.Balance(t, supplier.LedgerCode).StringFixed(2))
	assert.True(t, f.Balance(t, "12.1").IsZero())

	list, err := f.Services.Expenses.List(f.Ctx, f.TenantID(), expense.Filter{Kind: expense.KindSupplier})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreate_Validation(t *testing.T) {
	f := apptest.New(t)

	cases := map[string]expense.CreateInput{
		"supplier kind without supplier": {
			Kind: expense.KindSupplier, Date: apptest.Date(2024, 2, 1), Description: "x", Amount: apptest.Amount("10"),
		},
		"zero amount": {
			Kind: expense.KindOther, Date: apptest.Date(2024, 2, 1), Description: "x", Amount: apptest.Amount("0"),
		},
		"unknown kind": {
			Kind: "GIFT", Date: apptest.Date(2024, 2, 1), Description: "x", Amount: apptest.Amount("10"),
		},
		"blank description": {
			Kind: expense.KindOther, Date: apptest.Date(2024, 2, 1), Description: "  ", Amount: apptest.Amount("10"),
		},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.Services.Expenses.Create(f.Ctx, f.TenantID(), in)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
		})
	}
}
