package invoice_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/invoice"
	"pgcledger/internal/domain/posting"
)

func draft(t *testing.T, f *apptest.Fixture, withholding bool, items ...documents.ItemInput) *invoice.Invoice {
	t.Helper()
	customer := f.Customer(t, "Sonangol EP")
	inv, err := f.Services.Invoices.Create(f.Ctx, f.TenantID(), invoice.CreateInput{
		CustomerID:       customer.ID,
		Date:             apptest.Date(2024, 3, 10),
		DueDate:          apptest.Date(2024, 4, 10),
		Items:            items,
		ApplyWithholding: withholding,
	})
	require.NoError(t, err)
	return inv
}

func TestCreate_NumbersDraft(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))

	assert.Equal(t, "FT/2024/00001", inv.Number)
	assert.Equal(t, documents.StateDraft, inv.State)
	assert.Equal(t, "1140.00", inv.GrandTotal.StringFixed(2))

	got, err := f.Services.Invoices.GetByID(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Consultoria", got.Items[0].Description)
}

func TestCreate_RejectsSupplier(t *testing.T) {
	f := apptest.New(t)
	supplier := f.Supplier(t, "Refriango")

	_, err := f.Services.Invoices.Create(f.Ctx, f.TenantID(), invoice.CreateInput{
		CustomerID: supplier.ID,
		Date:       apptest.Date(2024, 3, 10),
		Items:      []documents.ItemInput{apptest.Line("Consultoria", "1", "1000", "14")},
	})
	require.Error(t, err)
}

func TestIssue_PostsSale(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))

	issued, result, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StateIssued, issued.State)
	assert.Equal(t, posting.StatusPosted, result.Status)
	require.NotNil(t, result.Entry)
	assert.True(t, result.Entry.Date.Equal(inv.Date))

	assert.Equal(t, "1140.00", f.Balance(t, "31.1.1.0001").StringFixed(2))
	assert.Equal(t, "1000.00", f.Balance(t, "71").StringFixed(2))
	assert.Equal(t, "-140.00", f.Balance(t, "34.3.1").StringFixed(2))
}

func TestIssue_UntaxedCreditsGrandTotal(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Formação", "2", "250", "0"))

	_, result, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Entry)
	assert.Len(t, result.Entry.Lines, 2)
	assert.Equal(t, "500.00", f.Balance(t, "71").StringFixed(2))
}

func TestPostIssued_Idempotent(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))
	_, first, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)

	again, err := f.Services.Invoices.PostIssued(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, posting.StatusAlreadyPosted, again.Status)
	assert.Equal(t, first.Entry.ID, again.Entry.ID)

	entries, err := f.Services.Invoices.Entries(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "1140.00", f.Balance(t, "31.1.1.0001").StringFixed(2))
}

func TestIssue_TwiceIsInvalidTransition(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))
	_, _, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)

	_, _, err = f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}

func TestIssue_Withholding(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, true, apptest.Line("Auditoria", "1", "1000", "0"))

	assert.Equal(t, "6.5", inv.WithholdingRate.String())
	assert.Equal(t, "65.00", inv.WithholdingAmount.StringFixed(2))
	assert.Equal(t, "935.00", inv.NetPayable().StringFixed(2))

	_, result, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, posting.StatusPosted, result.Status)

	assert.Equal(t, "935.00", f.Balance(t, "31.1.1.0001").StringFixed(2))
	assert.Equal(t, "65.00", f.Balance(t, "31.8").StringFixed(2))
	assert.Equal(t, "1000.00", f.Balance(t, "71").StringFixed(2))

	confirmed, err := f.Services.Invoices.ConfirmWithholding(f.Ctx, f.TenantID(), inv.ID, apptest.Date(2024, 4, 2))
	require.NoError(t, err)
	assert.Equal(t, posting.StatusPosted, confirmed.Status)
	assert.True(t, f.Balance(t, "31.8").IsZero())
	assert.Equal(t, "65.00", f.Balance(t, "34.2").StringFixed(2))

	repeat, err := f.Services.Invoices.ConfirmWithholding(f.Ctx, f.TenantID(), inv.ID, apptest.Date(2024, 4, 2))
	require.NoError(t, err)
	assert.Equal(t, posting.StatusAlreadyPosted, repeat.Status)
}

func TestConfirmWithholding_RequiresWithholding(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))
	_, _, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)

	_, err = f.Services.Invoices.ConfirmWithholding(f.Ctx, f.TenantID(), inv.ID, apptest.Date(2024, 4, 2))
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
}

func TestRecordPayment_PartialThenFull(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))
	_, _, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)

	payment, result, err := f.Services.Invoices.RecordPayment(f.Ctx, f.TenantID(), inv.ID, documents.PaymentInput{
		Date:            apptest.Date(2024, 3, 20),
		Amount:          apptest.Amount("500"),
		Method:          documents.MethodCash,
		GeneratePosting: true,
	})
	require.NoError(t, err)
	assert.Equal(t, posting.StatusPosted, result.Status)
	require.NotNil(t, payment.EntryID)
	assert.Equal(t, result.Entry.ID, *payment.EntryID)

	got, err := f.Services.Invoices.GetByID(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatePartiallyPaid, got.State)
	assert.Equal(t, "640.00", got.Outstanding().StringFixed(2))
	assert.Equal(t, "500.00", f.Balance(t, "11.1").StringFixed(2))
	assert.Equal(t, "640.00", f.Balance(t, "31.1.1.0001").StringFixed(2))

	_, _, err = f.Services.Invoices.RecordPayment(f.Ctx, f.TenantID(), inv.ID, documents.PaymentInput{
		Date:   apptest.Date(2024, 3, 21),
		Amount: apptest.Amount("700"),
		Method: documents.MethodCash,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	paid, result, err := f.Services.Invoices.MarkPaid(f.Ctx, f.TenantID(), inv.ID, apptest.Date(2024, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, documents.StatePaid, paid.State)
	assert.Equal(t, posting.StatusPosted, result.Status)
	assert.Equal(t, "640.00", f.Balance(t, "12.1").StringFixed(2))
	assert.True(t, f.Balance(t, "31.1.1.0001").IsZero())

	payments, err := f.Services.Invoices.Payments(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestRecordPayment_WithoutPosting(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))
	_, _, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)

	payment, result, err := f.Services.Invoices.RecordPayment(f.Ctx, f.TenantID(), inv.ID, documents.PaymentInput{
		Date:   apptest.Date(2024, 3, 20),
		Amount: apptest.Amount("1140"),
		Method: documents.MethodBank,
	})
	require.NoError(t, err)
	assert.True(t, result.IsSkipped())
	assert.Nil(t, payment.EntryID)
	assert.True(t, f.Balance(t, "12.1").IsZero())

	got, err := f.Services.Invoices.GetByID(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatePaid, got.State)
}

func TestRecordPayment_DraftRejected(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))

	_, _, err := f.Services.Invoices.RecordPayment(f.Ctx, f.TenantID(), inv.ID, documents.PaymentInput{
		Date:   apptest.Date(2024, 3, 20),
		Amount: apptest.Amount("100"),
		Method: documents.MethodCash,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}

func TestVoid(t *testing.T) {
	t.Run("issued invoice is reversed", func(t *testing.T) {
		f := apptest.New(t)
		inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))
		_, _, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
		require.NoError(t, err)

		voided, result, err := f.Services.Invoices.Void(f.Ctx, f.TenantID(), inv.ID, apptest.Date(2024, 3, 15))
		require.NoError(t, err)
		assert.Equal(t, documents.StateVoid, voided.State)
		assert.Equal(t, posting.StatusPosted, result.Status)

		assert.True(t, f.Balance(t, "31.1.1.0001").IsZero())
		assert.True(t, f.Balance(t, "71").IsZero())
		assert.True(t, f.Balance(t, "34.3.1").IsZero())

		entries, err := f.Services.Invoices.Entries(f.Ctx, f.TenantID(), inv.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("draft has nothing to reverse", func(t *testing.T) {
		f := apptest.New(t)
		inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))

		voided, result, err := f.Services.Invoices.Void(f.Ctx, f.TenantID(), inv.ID, apptest.Date(2024, 3, 15))
		require.NoError(t, err)
		assert.Equal(t, documents.StateVoid, voided.State)
		assert.True(t, result.IsSkipped())
	})

	t.Run("payments block voiding", func(t *testing.T) {
		f := apptest.New(t)
		inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))
		_, _, err := f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
		require.NoError(t, err)
		_, _, err = f.Services.Invoices.RecordPayment(f.Ctx, f.TenantID(), inv.ID, documents.PaymentInput{
			Date:   apptest.Date(2024, 3, 20),
			Amount: decimal.NewFromInt(100),
			Method: documents.MethodCash,
		})
		require.NoError(t, err)

		_, _, err = f.Services.Invoices.Void(f.Ctx, f.TenantID(), inv.ID, apptest.Date(2024, 3, 25))
		require.Error(t, err)
	})
}

func TestUpdateAndDelete_DraftOnly(t *testing.T) {
	f := apptest.New(t)
	inv := draft(t, f, false, apptest.Line("Consultoria", "1", "1000", "14"))

	updated, err := f.Services.Invoices.Update(f.Ctx, f.TenantID(), inv.ID, invoice.UpdateInput{
		Date:  inv.Date,
		Items: []documents.ItemInput{apptest.Line("Consultoria", "2", "1000", "14")},
	})
	require.NoError(t, err)
	assert.Equal(t, "2280.00", updated.GrandTotal.StringFixed(2))

	_, _, err = f.Services.Invoices.Issue(f.Ctx, f.TenantID(), inv.ID)
	require.NoError(t, err)

	err = f.Services.Invoices.Delete(f.Ctx, f.TenantID(), inv.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeDocumentPosted))
}
