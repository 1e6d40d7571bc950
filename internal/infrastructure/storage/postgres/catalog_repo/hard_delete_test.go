package catalog_repo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/tax"
)

func TestAccountRepo_DeleteBatch(t *testing.T) {
	repo := NewAccountRepo(nil)
	child, parent := id.New(), id.New()

	batch := repo.deleteBatch([]id.ID{child, parent})
	assert.Equal(t, 2, batch.Len())
	assert.Equal(t, "DELETE FROM accounts WHERE id = $1", batch.QueuedQueries[0].SQL)
	assert.Equal(t, []any{child}, batch.QueuedQueries[0].Arguments)
	assert.Equal(t, []any{parent}, batch.QueuedQueries[1].Arguments)

	assert.Equal(t, 0, repo.deleteBatch(nil).Len())
}

func TestAccountRepo_HasPostingsQuery(t *testing.T) {
	repo := NewAccountRepo(nil)
	a, b := id.New(), id.New()

	sql, args, err := repo.hasPostingsQuery([]id.ID{a, b}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT 1 FROM journal_lines WHERE account_id IN ($1,$2)")
	assert.Contains(t, sql, "LIMIT 1")
	assert.Equal(t, argsOf(a, b), argsOf(args...))
}

func TestUpdateQuery_SkipsImmutableColumns(t *testing.T) {
	repo := NewAccountRepo(nil)
	tenantID := id.New()
	acc := &chart.Account{
		BaseEntity:      entity.BaseEntity{ID: id.New(), Version: 3},
		TenantOwned:     entity.ForTenant(tenantID),
		Code:            "31.1",
		Description:     "Clientes correntes",
		AcceptsPostings: true,
	}

	q, entityID, err := repo.updateQuery(acc, "tenant_id")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, entityID)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "UPDATE accounts SET")
	assert.Contains(t, sql, "version = version + 1")
	assert.NotContains(t, sql, "tenant_id")
	assert.Equal(t, 3, args[len(args)-1])
}

func TestTaxRepo_Queries(t *testing.T) {
	repo := NewTaxRepo(nil)

	table := tax.DefaultBrackets()[:2]
	sql, args, err := repo.replaceBracketsQuery(table).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO irt_brackets (position,limit_amount,rate,fixed_amount,excess)")
	require.Len(t, args, 10)
	assert.Equal(t, 1, args[0])
	assert.Equal(t, 2, args[5])

	rate := tax.Rate{Code: tax.RateVATNormal, Name: "IVA", Rate: decimal.NewFromInt(14), Active: true, UpdatedAt: time.Now()}
	sql, _, err = repo.upsertRateQuery(rate).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ON CONFLICT (code) DO UPDATE SET")
}
