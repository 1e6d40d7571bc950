package register_repo

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/posting"
)

func TestJournalListQuery(t *testing.T) {
	repo := NewJournalRepo(nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.listQuery(id.New(), posting.JournalFilter{
		From: &from,
		Kind: posting.KindClosing,
	}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM journal_entries WHERE tenant_id = $1 AND date >= $2 AND kind = $3 ORDER BY date, number")
	assert.Len(t, args, 3)
}

func TestFindBySourceQuery(t *testing.T) {
	repo := NewJournalRepo(nil)
	key := posting.Key{SourceType: posting.SourceInvoice, SourceID: id.New(), Event: posting.EventIssue}

	sql, args, err := repo.findBySourceQuery(id.New(), key).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE tenant_id = $1 AND source_type = $2 AND source_id = $3 AND event = $4")
	assert.Equal(t, posting.EventIssue, args[3])
}

func TestInsertLinesQuery(t *testing.T) {
	repo := NewJournalRepo(nil)
	entryID := id.New()
	lines := []posting.Line{
		{ID: id.New(), EntryID: entryID, LineNo: 1, AccountID: id.New(), AccountCode: "31.1.1", Side: posting.Debit, Amount: types.MustMoney("1140")},
		{ID: id.New(), EntryID: entryID, LineNo: 2, AccountID: id.New(), AccountCode: "61.1", Side: posting.Credit, Amount: types.MustMoney("1140")},
	}

	sql, args, err := repo.insertLinesQuery(lines).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO journal_lines (id,entry_id,line_no,account_id,account_code,side,amount,memo) VALUES")
	assert.Len(t, args, 2*len(lineCols))
}

func TestLinesQuery(t *testing.T) {
	sql, _, err := NewJournalRepo(nil).linesQuery([]id.ID{id.New(), id.New()}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE entry_id IN ($1,$2) ORDER BY entry_id, line_no")
}

func TestMapCreateError(t *testing.T) {
	sourceID := id.New()
	e := &posting.Entry{
		ID:         id.New(),
		Number:     "LC/2024/00007",
		SourceType: posting.SourceInvoice,
		SourceID:   &sourceID,
		Event:      posting.EventIssue,
	}

	err := mapCreateError(&pgconn.PgError{Code: "23505", ConstraintName: sourceKeyConstraint}, e)
	require.True(t, apperror.IsDuplicate(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "source", appErr.Details["field"])

	err = mapCreateError(&pgconn.PgError{Code: "23505", ConstraintName: "journal_entries_number_key"}, e)
	require.True(t, apperror.IsDuplicate(err))
	appErr, _ = apperror.AsAppError(err)
	assert.Equal(t, "number", appErr.Details["field"])

	plain := errors.New("connection reset")
	err = mapCreateError(plain, e)
	assert.ErrorIs(t, err, plain)
	assert.False(t, apperror.IsDuplicate(err))
}
