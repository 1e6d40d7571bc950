package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/documents/invoice"
)

func TestExtractDBColumns_Embedded(t *testing.T) {
	cols := ExtractDBColumns[chart.Account]()

	assert.Equal(t, []string{
		"id", "version", "tenant_id", "code", "description", "class_code",
		"kind", "entity_kind", "accepts_postings", "parent_id",
	}, cols)
}

func TestExtractDBColumns_SkipsItems(t *testing.T) {
	cols := ExtractDBColumns[invoice.Invoice]()

	assert.Contains(t, cols, "grand_total")
	assert.Contains(t, cols, "withholding_settled")
	assert.Contains(t, cols, "tenant_id")
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "items")
}

func TestStructToMap_Account(t *testing.T) {
	tenantID := id.New()
	acc := chart.NewAccount(&tenantID, "31.1.1", "Clientes nacionais", chart.KindIntegration)
	acc.ClassCode = "3"

	m := StructToMap(acc)

	assert.Equal(t, acc.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, &tenantID, m["tenant_id"])
	assert.Equal(t, "31.1.1", m["code"])
	assert.Equal(t, chart.KindIntegration, m["kind"])
	assert.Equal(t, false, m["accepts_postings"])
	assert.Nil(t, m["parent_id"])
}

func TestValuesAndWithout(t *testing.T) {
	acc := chart.NewAccount(nil, "11.1", "Caixa", chart.KindMovement)

	cols := Without(ExtractDBColumns[chart.Account](), "version", "tenant_id", "parent_id")
	assert.Equal(t, []string{"id", "code", "description", "class_code", "kind", "entity_kind", "accepts_postings"}, cols)

	vals := Values(acc, []string{"code", "accepts_postings"})
	assert.Equal(t, []any{"11.1", true}, vals)
}
