package company_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/domain/chart"
)

func TestCreate_CopiesTemplate(t *testing.T) {
	f := apptest.New(t)

	tn, copied, err := f.Services.Company.Create(f.Ctx, tenant.CreateTenantInput{
		Name:  "Luanda Trading, SA",
		TaxID: "5417000002",
	})
	require.NoError(t, err)
	assert.Equal(t, len(chart.DefaultTemplate), copied)
	assert.Equal(t, "Angola", tn.Country)
	assert.Equal(t, "AOA", tn.BaseCurrency)
	assert.Equal(t, tenant.StatusActive, tn.Status)

	mine, err := f.Services.Chart.Resolver().Tenant(tn.ID).Find(f.Ctx, "71")
	require.NoError(t, err)
	theirs := f.Account(t, "71")
	assert.NotEqual(t, theirs.ID, mine.ID)
}

func TestCreate_CustomTemplateStartsEmpty(t *testing.T) {
	f := apptest.New(t)

	tn, copied, err := f.Services.Company.Create(f.Ctx, tenant.CreateTenantInput{
		Name:          "Benguela Pescas",
		TaxID:         "5417000003",
		ChartTemplate: tenant.TemplateCustom,
	})
	require.NoError(t, err)
	assert.Zero(t, copied)

	_, err = f.Services.Chart.Resolver().Tenant(tn.ID).Find(f.Ctx, "71")
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_Rejects(t *testing.T) {
	f := apptest.New(t)

	_, _, err := f.Services.Company.Create(f.Ctx, tenant.CreateTenantInput{TaxID: "1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, _, err = f.Services.Company.Create(f.Ctx, tenant.CreateTenantInput{
		Name:  "Copy",
		TaxID: f.Tenant.TaxID,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestSuspendAndActivate(t *testing.T) {
	f := apptest.New(t)

	require.NoError(t, f.Services.Company.Suspend(f.Ctx, f.TenantID()))
	got, err := f.Services.Company.Get(f.Ctx, f.TenantID())
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusSuspended, got.Status)

	require.NoError(t, f.Services.Company.Activate(f.Ctx, f.TenantID()))
	got, err = f.Services.Company.Get(f.Ctx, f.TenantID())
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusActive, got.Status)

	all, err := f.Services.Company.List(f.Ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
