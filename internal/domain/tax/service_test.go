package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/tax"
)

func TestService_ComputeIRT(t *testing.T) {
	f := apptest.New(t)

	due, err := f.Services.Tax.ComputeIRT(f.Ctx, types.MustMoney("120000"))
	require.NoError(t, err)
	assert.Equal(t, "2600", due.String())
}

func TestService_ReplaceBrackets(t *testing.T) {
	f := apptest.New(t)
	flat := tax.Table{{
		Limit:  types.MustMoney("99999999999"),
		Rate:   decimal.NewFromInt(10),
		Fixed:  types.Zero(),
		Excess: types.Zero(),
	}}
	require.NoError(t, f.Services.Tax.ReplaceBrackets(f.Ctx, flat))

	due, err := f.Services.Tax.ComputeIRT(f.Ctx, types.MustMoney("1000.5"))
	require.NoError(t, err)
	assert.Equal(t, "101", due.String())

	dup := append(flat, flat[0])
	err = f.Services.Tax.ReplaceBrackets(f.Ctx, dup)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	bad := tax.Table{{Limit: types.Zero(), Rate: decimal.NewFromInt(10)}}
	err = f.Services.Tax.ReplaceBrackets(f.Ctx, bad)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	require.NoError(t, f.Services.Tax.ResetBrackets(f.Ctx))
	table, err := f.Services.Tax.Brackets(f.Ctx)
	require.NoError(t, err)
	assert.Len(t, table, len(tax.DefaultBrackets()))
}

func TestService_RateValue(t *testing.T) {
	f := apptest.New(t)
	fallback := decimal.NewFromInt(99)

	vat, err := f.Services.Tax.RateValue(f.Ctx, tax.RateVATNormal, fallback)
	require.NoError(t, err)
	assert.Equal(t, "14", vat.String())

	missing, err := f.Services.Tax.RateValue(f.Ctx, "NAO_EXISTE", fallback)
	require.NoError(t, err)
	assert.Equal(t, "99", missing.String())

	rates, err := f.Services.Tax.Rates(f.Ctx)
	require.NoError(t, err)
	assert.Len(t, rates, len(tax.DefaultRates()))
}
