package pgc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"311", "31.1"},
		{"3111", "31.1.1"},
		{"3110001", "31.1.0.0.0.1"},
		{"31.1", "31.1"},
		{"31.1.0001", "31.1.0001"},
		{"31", "31"},
		{"3", "3"},
		{" 621 ", "62.1"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestParentCode(t *testing.T) {
	assert.Equal(t, "31.1", ParentCode("31.1.1"))
	assert.Equal(t, "31", ParentCode("31.1"))
	assert.Equal(t, "", ParentCode("31"))
	assert.Equal(t, []string{"31.1", "31"}, Ancestors("31.1.2"))
	assert.True(t, IsDescendantOf("31.1.2", "31"))
	assert.False(t, IsDescendantOf("311", "31"))
}

func TestLookupClass(t *testing.T) {
	c, ok := LookupClass("71.1")
	assert.True(t, ok)
	assert.Equal(t, "7", c.Code)

	_, ok = LookupClass("9")
	assert.False(t, ok)
}

func TestSignedBalance(t *testing.T) {
	debit := decimal.NewFromInt(1000)
	credit := decimal.NewFromInt(300)

	assert.Equal(t, "700", SignedBalance("11.1", debit, credit).String())
	assert.Equal(t, "-700", SignedBalance("71", debit, credit).String())

	for _, code := range []string{"1", "2", "3", "6"} {
		assert.Equal(t, DebitNatured, NatureOf(code), code)
	}
	for _, code := range []string{"4", "5", "7", "8"} {
		assert.Equal(t, CreditNatured, NatureOf(code), code)
	}
}
