package purchase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/purchase"
	"pgcledger/internal/domain/posting"
)

func draft(t *testing.T, f *apptest.Fixture, withholding bool, items ...documents.ItemInput) *purchase.Purchase {
	t.Helper()
	supplier := f.Supplier(t, "Refriango")
	pur, err := f.Services.Purchases.Create(f.Ctx, f.TenantID(), purchase.CreateInput{
		SupplierID:       supplier.ID,
		Date:             apptest.Date(2024, 5, 6),
		DueDate:          apptest.Date(2024, 6, 6),
		SupplierRef:      "FT A/118",
		Items:            items,
		ApplyWithholding: withholding,
	})
	require.NoError(t, err)
	return pur
}

func TestRegister_PostsCost(t *testing.T) {
	f := apptest.New(t)
	pur := draft(t, f, false, apptest.Line("Material de escritório", "4", "250", "14"))
	assert.Equal(t, "CP/2024/00001", pur.Number)

	registered, result, err := f.Services.Purchases.Register(f.Ctx, f.TenantID(), pur.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StateRegistered, registered.State)
	assert.Equal(t, posting.StatusPosted, result.Status)

	assert.Equal(t, "1000.00", f.Balance(t, "61").StringFixed(2))
	assert.Equal(t, "140.00", f.Balance(t, "34.3.2").StringFixed(2))
	assert.Equal(t, "-1140.00", f.Balance(t, "32.1.1.0001").StringFixed(2))

	again, err := f.Services.Purchases.PostRegistered(f.Ctx, f.TenantID(), pur.ID)
	require.NoError(t, err)
	assert.Equal(t, posting.StatusAlreadyPosted, again.Status)
}

func TestRegister_WithholdingAndSettlement(t *testing.T) {
	f := apptest.New(t)
	pur := draft(t, f, true, apptest.Line("Serviços de limpeza", "1", "2000", "0"))
	assert.Equal(t, "130.00", pur.WithholdingAmount.StringFixed(2))
	assert.Equal(t, "1870.00", pur.NetPayable().StringFixed(2))

	_, _, err := f.Services.Purchases.Register(f.Ctx, f.TenantID(), pur.ID)
	require.NoError(t, err)
	assert.Equal(t, "-1870.00", f.Balance(t, "32.1.1.0001").StringFixed(2))
	assert.Equal(t, "-130.00", f.Balance(t, "34.1.1").StringFixed(2))

	result, err := f.Services.Purchases.SettleWithholding(f.Ctx, f.TenantID(), pur.ID, apptest.Date(2024, 6, 15))
	require.NoError(t, err)
	assert.Equal(t, posting.StatusPosted, result.Status)
	assert.True(t, f.Balance(t, "34.1.1").IsZero())
	assert.Equal(t, "-130.00", f.Balance(t, "12.1").StringFixed(2))

	repeat, err := f.Services.Purchases.SettleWithholding(f.Ctx, f.TenantID(), pur.ID, apptest.Date(2024, 6, 15))
	require.NoError(t, err)
	assert.Equal(t, posting.StatusAlreadyPosted, repeat.Status)
}

func TestRecordPayment_SettlesSupplier(t *testing.T) {
	f := apptest.New(t)
	pur := draft(t, f, false, apptest.Line("Material de escritório", "4", "250", "14"))
	_, _, err := f.Services.Purchases.Register(f.Ctx, f.TenantID(), pur.ID)
	require.NoError(t, err)

	_, result, err := f.Services.Purchases.RecordPayment(f.Ctx, f.TenantID(), pur.ID, documents.PaymentInput{
		Date:            apptest.Date(2024, 5, 20),
		Amount:          apptest.Amount("1140"),
		Method:          documents.MethodBank,
		GeneratePosting: true,
	})
	require.NoError(t, err)
	assert.Equal(t, posting.StatusPosted, result.Status)
	assert.True(t, f.Balance(t, "32.1.1.0001").IsZero())
	assert.Equal(t, "-1140.00", f.Balance(t, "12.1").StringFixed(2))

	got, err := f.Services.Purchases.GetByID(f.Ctx, f.TenantID(), pur.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatePaid, got.State)
	assert.True(t, got.Outstanding().IsZero())
}

func TestVoid_ReversesRegistration(t *testing.T) {
	f := apptest.New(t)
	pur := draft(t, f, false, apptest.Line("Material de escritório", "4", "250", "14"))
	_, _, err := f.Services.Purchases.Register(f.Ctx, f.TenantID(), pur.ID)
	require.NoError(t, err)

	voided, result, err := f.Services.Purchases.Void(f.Ctx, f.TenantID(), pur.ID, apptest.Date(2024, 5, 31))
	require.NoError(t, err)
	assert.Equal(t, documents.StateVoid, voided.State)
	assert.Equal(t, posting.StatusPosted, result.Status)
	assert.True(t, f.Balance(t, "61").IsZero())
	assert.True(t, f.Balance(t, "32.1.1.0001").IsZero())

	_, _, err = f.Services.Purchases.Register(f.Ctx, f.TenantID(), pur.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}
