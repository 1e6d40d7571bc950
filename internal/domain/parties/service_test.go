package parties_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app"
	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/parties"
	"pgcledger/internal/domain/posting"
)

func TestCreate_SequencesUnderParent(t *testing.T) {
	f := apptest.New(t)

	first := f.Customer(t, "Sonangol EP")
	second := f.Customer(t, "Unitel SA")
	supplier := f.Supplier(t, "ENDE")

	assert.Equal(t, 1, first.SequenceNumber)
	assert.Equal(t, "31.1.1.0001", first.LedgerCode)
	assert.Equal(t, 2, second.SequenceNumber)
	assert.Equal(t, "31.1.1.0002", second.LedgerCode)
	assert.Equal(t, 1, supplier.SequenceNumber, "every parent account has its own sequence")
	assert.Equal(t, "32.1.1.0001", supplier.LedgerCode)
}

func TestCreate_SyncsShadowAccount(t *testing.T) {
	f := apptest.New(t)
	p := f.Supplier(t, "ENDE")

	require.NotNil(t, p.AccountID)
	acc := f.Account(t, p.LedgerCode)
	assert.Equal(t, *p.AccountID, acc.ID)
	assert.Equal(t, "ENDE", acc.Description)
	assert.Equal(t, chart.KindMovement, acc.Kind)
	assert.Equal(t, chart.EntitySupplier, acc.EntityKind)
	assert.Equal(t, "3", acc.ClassCode)
	require.NotNil(t, acc.ParentID)
	assert.Equal(t, f.Account(t, "32.1.1").ID, *acc.ParentID)

	resolved, err := f.Services.Parties.AccountFor(f.Ctx, f.Tenant.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, resolved.ID)
}

func TestCreate_CodeOverride(t *testing.T) {
	f := apptest.New(t)

	p, err := f.Services.Parties.Create(f.Ctx, f.Tenant.ID, parties.CreateInput{
		Kind:            parties.KindCustomer,
		Name:            "Cliente Histórico",
		ParentAccountID: f.Account(t, "31.1.1").ID,
		CodeOverride:    "3111099",
	})
	require.NoError(t, err)
	assert.Equal(t, "3111099", p.LedgerCode, "the override is stored as given")
	assert.Equal(t, 1, p.SequenceNumber)

	acc, err := f.Services.Parties.AccountFor(f.Ctx, f.Tenant.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "3111099", acc.Code)
	require.NotNil(t, acc.ParentID)
	assert.Equal(t, f.Account(t, "31.1.1").ID, *acc.ParentID)
}

func TestCreate_ContinuesSequenceOnCompanyCopyOfParent(t *testing.T) {
	f := apptest.New(t)
	custom, _, err := f.Services.Company.Create(f.Ctx, tenant.CreateTenantInput{
		Name:          "Lobito Pescas, Lda",
		TaxID:         "5417000002",
		ExerciseYear:  2024,
		ChartTemplate: tenant.TemplateCustom,
	})
	require.NoError(t, err)

	templateParent, err := f.Services.Chart.Resolver().Global().Find(f.Ctx, "31.1.1")
	require.NoError(t, err)
	first, err := f.Services.Parties.Create(f.Ctx, custom.ID, parties.CreateInput{
		Kind:            parties.KindCustomer,
		Name:            "Pescador A",
		ParentAccountID: templateParent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "31.1.1.0001", first.LedgerCode)

	localParent, err := f.Services.Chart.SaveAccount(f.Ctx, chart.SaveAccountInput{
		TenantID:    &custom.ID,
		Code:        "31.1.1",
		Description: "Clientes nacionais",
		Kind:        chart.KindIntegration,
	})
	require.NoError(t, err)
	require.NotEqual(t, templateParent.ID, localParent.ID)

	second, err := f.Services.Parties.Create(f.Ctx, custom.ID, parties.CreateInput{
		Kind:            parties.KindCustomer,
		Name:            "Pescador B",
		ParentAccountID: localParent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.SequenceNumber)
	assert.Equal(t, "31.1.1.0002", second.LedgerCode)
}

func TestCreate_Validation(t *testing.T) {
	f := apptest.New(t)

	_, err := f.Services.Parties.Create(f.Ctx, f.Tenant.ID, parties.CreateInput{
		Kind:            parties.KindCustomer,
		Name:            "Sem conta",
		ParentAccountID: id.New(),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.Services.Parties.Create(f.Ctx, f.Tenant.ID, parties.CreateInput{
		Kind:            parties.KindCustomer,
		Name:            "Email",
		ParentAccountID: f.Account(t, "31.1.1").ID,
		Contact:         parties.Contact{Email: "not-an-email"},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestUpdate_RenamesShadowAccount(t *testing.T) {
	f := apptest.New(t)
	p := f.Customer(t, "Unitel")

	updated, err := f.Services.Parties.Update(f.Ctx, f.Tenant.ID, p.ID, parties.UpdateInput{
		Name:    "Unitel SA",
		Contact: parties.Contact{Email: "contabilidade@unitel.ao"},
	})
	require.NoError(t, err)
	assert.Equal(t, p.LedgerCode, updated.LedgerCode)
	assert.Equal(t, "Unitel SA", f.Account(t, p.LedgerCode).Description)
}

func TestDelete(t *testing.T) {
	f := apptest.New(t)
	idle := f.Customer(t, "Sem movimentos")
	busy := f.Customer(t, "Com movimentos")

	require.NoError(t, f.Services.Parties.Delete(f.Ctx, f.Tenant.ID, idle.ID))
	_, err := f.Services.Parties.GetByID(f.Ctx, f.Tenant.ID, idle.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = f.Services.Chart.Resolver().Tenant(f.Tenant.ID).Find(f.Ctx, idle.LedgerCode)
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.Services.Posting.PostManual(f.Ctx, f.Tenant.ID, posting.ManualInput{
		Date:        apptest.Date(2024, 2, 10),
		Description: "Saldo inicial",
		Kind:        posting.KindOpening,
		Lines: []posting.ManualLine{
			{AccountID: *busy.AccountID, Side: posting.Debit, Amount: apptest.Amount("1000")},
			{AccountID: f.Account(t, "71").ID, Side: posting.Credit, Amount: apptest.Amount("1000")},
		},
	})
	require.NoError(t, err)

	err = f.Services.Parties.Delete(f.Ctx, f.Tenant.ID, busy.ID)
	assert.True(t, apperror.IsHasDependents(err))
}

// deleteOrderRepo records whether the shadow account still existed when
// the party row was deleted.
type deleteOrderRepo struct {
	parties.Repository
	accounts    chart.Repository
	accountLive []bool
}

func (r *deleteOrderRepo) Delete(ctx context.Context, tenantID, partyID id.ID) error {
	p, err := r.Repository.GetByID(ctx, tenantID, partyID)
	if err == nil && p.AccountID != nil {
		_, getErr := r.accounts.GetByID(ctx, *p.AccountID)
		r.accountLive = append(r.accountLive, getErr == nil)
	}
	return r.Repository.Delete(ctx, tenantID, partyID)
}

func TestDelete_RemovesPartyRowBeforeShadowAccount(t *testing.T) {
	var repo *deleteOrderRepo
	f := apptest.NewWith(t, func(d *app.Deps) {
		repo = &deleteOrderRepo{Repository: d.Repos.Parties, accounts: d.Repos.Chart}
		d.Repos.Parties = repo
	})
	p := f.Supplier(t, "ENDE")
	require.NotNil(t, p.AccountID)

	require.NoError(t, f.Services.Parties.Delete(f.Ctx, f.Tenant.ID, p.ID))
	assert.Equal(t, []bool{true}, repo.accountLive, "the row referencing the account goes first")

	_, err := f.Services.Chart.GetByID(f.Ctx, &f.Tenant.ID, *p.AccountID)
	assert.True(t, apperror.IsNotFound(err))

	parent := f.Account(t, "32.1.1")
	_, err = f.Services.Chart.Delete(f.Ctx, &f.Tenant.ID, parent.ID)
	assert.NoError(t, err, "no party references the parent any more")
}

func TestList_FiltersByKind(t *testing.T) {
	f := apptest.New(t)
	f.Customer(t, "A")
	f.Customer(t, "B")
	f.Supplier(t, "C")

	res, err := f.Services.Parties.List(f.Ctx, f.Tenant.ID, parties.ListFilter{Kind: parties.KindSupplier})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "C", res.Items[0].Name)
	assert.EqualValues(t, 1, res.TotalCount)
}
