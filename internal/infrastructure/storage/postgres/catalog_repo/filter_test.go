package catalog_repo

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/parties"
)

const accountCols = "id, version, tenant_id, code, description, class_code, kind, entity_kind, accepts_postings, parent_id"

func TestFindPostableQuery(t *testing.T) {
	repo := NewAccountRepo(nil)
	tenantID := id.New()

	tests := []struct {
		name     string
		tenantID *id.ID
		c        chart.Candidate
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "template prefix",
			c:        chart.Prefix("34"),
			wantSQL:  "SELECT " + accountCols + " FROM accounts WHERE tenant_id IS NULL AND accepts_postings = $1 AND code LIKE $2 ORDER BY code COLLATE \"C\"",
			wantArgs: []any{true, "34%"},
		},
		{
			name:     "tenant exact",
			tenantID: &tenantID,
			c:        chart.Exact("31.1.2.1"),
			wantSQL:  "SELECT " + accountCols + " FROM accounts WHERE tenant_id = $1 AND accepts_postings = $2 AND code = $3 ORDER BY code COLLATE \"C\"",
			wantArgs: []any{tenantID, true, "31.1.2.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.findPostableQuery(tt.tenantID, tt.c).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, argsOf(tt.wantArgs...), argsOf(args...))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "34", escapeLike("34"))
	assert.Equal(t, `1\_2\%`, escapeLike("1_2%"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func TestParseOrderBy(t *testing.T) {
	repo := NewPartyRepo(nil)

	got, err := repo.parseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "ledger_code", got)

	got, err = repo.parseOrderBy("-name")
	require.NoError(t, err)
	assert.Equal(t, "name DESC", got)

	got, err = repo.parseOrderBy("tax_id")
	require.NoError(t, err)
	assert.Equal(t, "tax_id ASC", got)

	_, err = repo.parseOrderBy("name; DROP TABLE parties")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestPartyListQuery(t *testing.T) {
	repo := NewPartyRepo(nil)
	tenantID := id.New()

	q := repo.listQuery(tenantID, parties.ListFilter{Kind: parties.KindSupplier})
	q = repo.BaseCatalogRepo.listQuery(q, domain.ListFilter{Search: "sonangol"})

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE tenant_id = $1 AND kind = $2 AND (name ILIKE $3 OR ledger_code ILIKE $4 OR tax_id ILIKE $5)")
	assert.Equal(t, argsOf(tenantID, parties.KindSupplier, "%sonangol%", "%sonangol%", "%sonangol%"), argsOf(args...))
}

func TestNextSequenceQuery(t *testing.T) {
	repo := NewPartyRepo(nil)
	tenantID := id.New()

	sql, args, err := repo.nextSequenceQuery(tenantID, "31.1.1").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COALESCE(MAX(p.sequence_number), 0) + 1 FROM parties p "+
		"JOIN accounts a ON a.id = p.parent_account_id WHERE p.tenant_id = $1 AND a.code = $2", sql)
	assert.Equal(t, argsOf(tenantID, "31.1.1"), argsOf(args...))
	assert.Equal(t, lockKey(tenantID, "31.1.1"), lockKey(tenantID, "31.1.1"))
	assert.NotEqual(t, lockKey(tenantID, "31.1.1"), lockKey(tenantID, "32.1.1"))
	assert.NotEqual(t, lockKey(tenantID, "31.1.1"), lockKey(id.New(), "31.1.1"))
}

func TestAccountRepo_ChildrenQuery(t *testing.T) {
	repo := NewAccountRepo(nil)
	a, b := id.New(), id.New()

	sql, args, err := repo.childrenQuery([]id.ID{a, b}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM accounts WHERE parent_id IN ($1,$2) ORDER BY code COLLATE \"C\"")
	assert.NotContains(t, sql, "tenant_id =", "children are read across tiers")
	assert.Equal(t, argsOf(a, b), argsOf(args...))
}

func TestRateAtQuery(t *testing.T) {
	repo := NewExchangeRepo(nil)
	tenantID := id.New()
	day := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.rateAtQuery(tenantID, day).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM exchange_rates WHERE tenant_id = $1 AND valid_from <= $2 ORDER BY valid_from DESC")
	assert.Equal(t, argsOf(tenantID, day), argsOf(args...))
}

// argsOf prints query arguments; squirrel passes a single UUID through its
// driver.Valuer while list elements stay raw.
func argsOf(args ...any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = fmt.Sprint(a)
	}
	return out
}
