package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/domain/reports"
)

func TestTotalsQuery(t *testing.T) {
	repo := NewReportRepo(nil)

	sql, args, err := repo.totalsQuery(id.New(), reports.MovementFilter{
		Period:       reports.Year(2024),
		CodePrefixes: []string{"6", "7"},
		ExcludeKinds: []posting.EntryKind{posting.KindClosing},
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id JOIN accounts a ON a.id = l.account_id")
	assert.Contains(t, sql, "WHERE e.tenant_id = $1 AND e.date >= $2 AND e.date <= $3 AND (a.code LIKE $4 OR a.code LIKE $5) AND e.kind NOT IN ($6)")
	assert.Contains(t, sql, "GROUP BY l.account_id, a.code, a.description ORDER BY a.code COLLATE \"C\"")
	require.Len(t, args, 6)
	assert.Equal(t, "6%", args[3])
	assert.Equal(t, "7%", args[4])
	assert.Equal(t, posting.KindClosing, args[5])
}

func TestTotalsQuery_Unfiltered(t *testing.T) {
	sql, args, err := NewReportRepo(nil).totalsQuery(id.New(), reports.MovementFilter{}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE e.tenant_id = $1 GROUP BY")
	assert.Len(t, args, 1)
}

func TestMovementsQuery(t *testing.T) {
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	sql, args, err := NewReportRepo(nil).movementsQuery(id.New(), id.New(), reports.Until(to)).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE e.tenant_id = $1 AND l.account_id = $2 AND e.date <= $3 ORDER BY e.date, e.number, l.line_no")
	assert.Equal(t, to, args[2])
}

func TestTaxTotalsQuery(t *testing.T) {
	table, ok := documentTable(posting.SourcePurchase)
	require.True(t, ok)
	assert.Equal(t, "purchases", table)

	_, ok = documentTable(posting.SourcePayroll)
	assert.False(t, ok)

	sql, args, err := NewReportRepo(nil).taxTotalsQuery(table, id.New(), reports.Period{}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM purchases WHERE tenant_id = $1 AND state IN ($2,$3,$4,$5)")
	assert.Len(t, args, 5)
}
