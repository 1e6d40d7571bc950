package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/types"
)

func TestTable_Compute(t *testing.T) {
	table := Table{
		{Limit: types.MustMoney("150000"), Rate: decimal.NewFromInt(13), Fixed: types.Zero(), Excess: types.MustMoney("100000")},
		{Limit: types.MustMoney("100000"), Rate: decimal.Zero, Fixed: types.Zero(), Excess: types.Zero()},
	}

	assert.Equal(t, "2600", table.Compute(types.MustMoney("120000")).String())
	assert.True(t, table.Compute(types.MustMoney("100000")).IsZero())
	assert.True(t, table.Compute(types.MustMoney("-5")).IsZero())
	assert.True(t, table.Compute(types.MustMoney("150001")).IsZero(), "income above the last limit is not taxed")
	assert.True(t, Table{}.Compute(types.MustMoney("1000")).IsZero())
}

func TestDefaultBrackets(t *testing.T) {
	table := DefaultBrackets()

	tests := []struct {
		income string
		want   string
	}{
		{"80000", "0"},
		{"120000", "2600"},
		{"250000", "40250"},
		{"1200000", "229249"},
	}
	for _, tt := range tests {
		t.Run(tt.income, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Compute(types.MustMoney(tt.income)).String())
		})
	}
}

func TestTable_Lookup(t *testing.T) {
	table := DefaultBrackets()

	b, ok := table.Lookup(types.MustMoney("150000"))
	require.True(t, ok)
	assert.Equal(t, "150000", b.Limit.String())

	b, ok = table.Lookup(types.MustMoney("150000.01"))
	require.True(t, ok)
	assert.Equal(t, "200000", b.Limit.String())

	_, ok = Table{}.Lookup(types.Zero())
	assert.False(t, ok)
}
