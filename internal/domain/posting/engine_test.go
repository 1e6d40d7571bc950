package posting_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app"
	"pgcledger/internal/app/apptest"
	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/posting"
)

type recordingAuditor struct {
	numbers []string
}

func (a *recordingAuditor) LogPosting(_ context.Context, e *posting.Entry) error {
	a.numbers = append(a.numbers, e.Number)
	return nil
}

func saleRequest(f *apptest.Fixture, key *posting.Key, amount string) posting.Request {
	return posting.Request{
		TenantID:    f.Tenant.ID,
		Key:         key,
		Date:        apptest.Date(2024, 5, 20),
		Description: "Venda",
		Legs: []posting.Leg{
			posting.DebitRole(posting.RoleCash, apptest.Amount(amount)),
			posting.CreditRole(posting.RoleRevenue, apptest.Amount(amount)),
		},
	}
}

func TestPost_ResolvesRolesAndNumbers(t *testing.T) {
	auditor := &recordingAuditor{}
	f := apptest.NewWith(t, func(d *app.Deps) { d.Auditor = auditor })

	res, err := f.Services.Posting.Post(f.Ctx, saleRequest(f, nil, "250"))
	require.NoError(t, err)
	require.Equal(t, posting.StatusPosted, res.Status)

	e := res.Entry
	assert.Equal(t, "LC/2024/00001", e.Number)
	assert.Equal(t, posting.KindNormal, e.Kind)
	assert.Equal(t, posting.SourceManual, e.SourceType)
	require.Len(t, e.Lines, 2)
	assert.Equal(t, "11.1", e.Lines[0].AccountCode)
	assert.Equal(t, posting.Debit, e.Lines[0].Side)
	assert.Equal(t, "71", e.Lines[1].AccountCode)
	assert.True(t, e.IsBalanced())
	assert.Equal(t, []string{"LC/2024/00001"}, auditor.numbers)

	assert.Equal(t, "250.00", f.Balance(t, "11.1").StringFixed(2))
	assert.Equal(t, "250.00", f.Balance(t, "71").StringFixed(2), "revenue is credit natured")
}

func TestPost_IdempotentPerKey(t *testing.T) {
	f := apptest.New(t)
	key := &posting.Key{SourceType: posting.SourceInvoice, SourceID: id.New(), Event: posting.EventIssue}

	first, err := f.Services.Posting.Post(f.Ctx, saleRequest(f, key, "100"))
	require.NoError(t, err)
	require.Equal(t, posting.StatusPosted, first.Status)

	second, err := f.Services.Posting.Post(f.Ctx, saleRequest(f, key, "999"))
	require.NoError(t, err)
	assert.Equal(t, posting.StatusAlreadyPosted, second.Status)
	assert.Equal(t, first.Entry.ID, second.Entry.ID)

	entries, err := f.Services.Posting.EntriesFor(f.Ctx, f.Tenant.ID, key.SourceType, key.SourceID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "100.00", f.Balance(t, "71").StringFixed(2))

	found, err := f.Services.Posting.Find(f.Ctx, f.Tenant.ID, *key)
	require.NoError(t, err)
	assert.Equal(t, first.Entry.ID, found.ID)
}

func TestPost_SkipsWhenRoleUnresolved(t *testing.T) {
	f := apptest.NewWith(t, func(d *app.Deps) {
		m := posting.DefaultAccountMap()
		m[posting.RoleRevenue] = []chart.Candidate{chart.Exact("79.9")}
		d.AccountMap = m
	})
	key := &posting.Key{SourceType: posting.SourceInvoice, SourceID: id.New(), Event: posting.EventIssue}

	res, err := f.Services.Posting.Post(f.Ctx, saleRequest(f, key, "100"))
	require.NoError(t, err)
	assert.True(t, res.IsSkipped())
	assert.False(t, res.HasEntry())
	assert.True(t, strings.HasPrefix(res.Reason, apperror.CodePostingAccountMissing), res.Reason)
	assert.Contains(t, res.Reason, string(posting.RoleRevenue))

	_, err = f.Services.Posting.Find(f.Ctx, f.Tenant.ID, *key)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPost_RejectsUnbalanced(t *testing.T) {
	f := apptest.New(t)
	req := saleRequest(f, nil, "100")
	req.Legs[1].Amount = apptest.Amount("99.99")

	_, err := f.Services.Posting.Post(f.Ctx, req)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnbalancedEntry))

	entries, err := f.Services.Posting.Journal(f.Ctx, f.Tenant.ID, posting.JournalFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPost_ZeroLegsDropped(t *testing.T) {
	f := apptest.New(t)
	req := saleRequest(f, nil, "100")
	req.Legs = append(req.Legs, posting.DebitRole(posting.RoleCustomerWithholding, apptest.Amount("0")))

	res, err := f.Services.Posting.Post(f.Ctx, req)
	require.NoError(t, err)
	assert.Len(t, res.Entry.Lines, 2)
}

func TestPost_RejectsNonPostableAccount(t *testing.T) {
	f := apptest.New(t)
	ledger := f.Account(t, "31")

	_, err := f.Services.Posting.Post(f.Ctx, posting.Request{
		TenantID:    f.Tenant.ID,
		Date:        apptest.Date(2024, 1, 5),
		Description: "Lançamento em conta de razão",
		Legs: []posting.Leg{
			posting.DebitAccount(ledger.ID, apptest.Amount("10")),
			posting.CreditRole(posting.RoleRevenue, apptest.Amount("10")),
		},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestReverse(t *testing.T) {
	f := apptest.New(t)
	key := posting.Key{SourceType: posting.SourceInvoice, SourceID: id.New(), Event: posting.EventIssue}
	res, err := f.Services.Posting.Post(f.Ctx, saleRequest(f, &key, "400"))
	require.NoError(t, err)

	voidKey := key
	voidKey.Event = posting.EventVoid
	rev, err := f.Services.Posting.Reverse(f.Ctx, res.Entry, voidKey, apptest.Date(2024, 5, 21), "Anulação")
	require.NoError(t, err)
	require.Equal(t, posting.StatusPosted, rev.Status)
	assert.Equal(t, posting.Credit, rev.Entry.Lines[0].Side)
	assert.Equal(t, "LC/2024/00002", rev.Entry.Number)

	assert.True(t, f.Balance(t, "11.1").IsZero())
	assert.True(t, f.Balance(t, "71").IsZero())
}

func TestPostManual(t *testing.T) {
	f := apptest.New(t)
	cash := f.Account(t, "11.1")
	bank := f.Account(t, "12.1")

	_, err := f.Services.Posting.PostManual(f.Ctx, f.Tenant.ID, posting.ManualInput{
		Date:        apptest.Date(2024, 1, 1),
		Description: "Apuramento manual",
		Kind:        posting.KindClosing,
		Lines: []posting.ManualLine{
			{AccountID: cash.ID, Side: posting.Debit, Amount: apptest.Amount("1")},
			{AccountID: bank.ID, Side: posting.Credit, Amount: apptest.Amount("1")},
		},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.Services.Posting.PostManual(f.Ctx, f.Tenant.ID, posting.ManualInput{
		Date:        apptest.Date(2024, 1, 1),
		Description: "Depósito",
		Lines: []posting.ManualLine{
			{AccountID: bank.ID, Side: posting.Debit, Amount: apptest.Amount("-5")},
			{AccountID: cash.ID, Side: posting.Credit, Amount: apptest.Amount("-5")},
		},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	e, err := f.Services.Posting.PostManual(f.Ctx, f.Tenant.ID, posting.ManualInput{
		Date:        apptest.Date(2024, 1, 1),
		Description: "Depósito",
		Lines: []posting.ManualLine{
			{AccountID: bank.ID, Side: posting.Debit, Amount: apptest.Amount("5000")},
			{AccountID: cash.ID, Side: posting.Credit, Amount: apptest.Amount("5000")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, posting.SourceManual, e.SourceType)
	_, hasKey := e.Key()
	assert.False(t, hasKey)
}
