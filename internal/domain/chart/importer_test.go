package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		code string
		desc string
		kind Kind
	}{
		{"letter kind", "11 Caixa R", "11", "Caixa", KindLedger},
		{"no kind", "71 Vendas", "71", "Vendas", KindMovement},
		{"compact code", "3111 Clientes Nacionais M", "31.1.1", "Clientes Nacionais", KindMovement},
		{"word kind", "88 Resultado Líquido Apuramento", "88", "Resultado Líquido", KindClosing},
		{"tab separated", "62.1\tSubcontratos\tI", "62.1", "Subcontratos", KindIntegration},
		{"wide columns", "34.3    IVA  a pagar    integração", "34.3", "IVA a pagar", KindIntegration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok, reason := ParseImportLine(tt.line)
			require.True(t, ok, reason)
			assert.Equal(t, tt.code, row.Code)
			assert.Equal(t, tt.desc, row.Description)
			assert.Equal(t, tt.kind, row.Kind)
		})
	}
}

func TestParseImportLine_Rejected(t *testing.T) {
	_, ok, reason := ParseImportLine("ABC Conta")
	assert.False(t, ok)
	assert.Equal(t, "invalid account code", reason)

	_, ok, reason = ParseImportLine("71")
	assert.False(t, ok)
	assert.Equal(t, "missing description", reason)

	_, ok, reason = ParseImportLine("# comment")
	assert.False(t, ok)
	assert.Empty(t, reason)
}

func TestParseImport(t *testing.T) {
	text := "# PGC\n11 Caixa R\n\nXX bad\n12 Bancos R\n"

	rows, failures := ParseImport(text)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 5, rows[1].Line)
	require.Len(t, failures, 1)
	assert.Equal(t, 4, failures[0].Line)
	assert.Equal(t, "XX bad", failures[0].Raw)
}
