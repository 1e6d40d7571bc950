package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/app"
	"pgcledger/internal/app/apptest"
	"pgcledger/internal/domain/posting"
	"pgcledger/pkg/logger"
)

func testEnv(t *testing.T) (*Env, *bytes.Buffer, *apptest.Fixture) {
	t.Helper()
	f := apptest.New(t)
	out := &bytes.Buffer{}
	env := &Env{
		Out: out,
		Log: logger.Nop(),
		Open: func(context.Context) (*app.Services, func(), error) {
			return f.Services, func() {}, nil
		},
	}
	return env, out, f
}

func execute(env *Env, stdin string, args ...string) error {
	root := NewRootCommand(env)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestCompanyCreateAndList(t *testing.T) {
	env, out, f := testEnv(t)

	require.NoError(t, execute(env, "", "company", "create", "--name", "Palanca Comércio, SA", "--tax-id", "5417000099", "--year", "2024"))
	assert.Contains(t, out.String(), "accounts copied")

	out.Reset()
	require.NoError(t, execute(env, "", "company", "list"))
	assert.Contains(t, out.String(), "Palanca Comércio, SA")
	assert.Contains(t, out.String(), f.Tenant.Name)
}

func TestCompanyCreateRequiresName(t *testing.T) {
	env, _, _ := testEnv(t)
	assert.Error(t, execute(env, "", "company", "create", "--tax-id", "5417000099"))
}

func TestChartImportGlobalFromStdin(t *testing.T) {
	env, out, f := testEnv(t)

	err := execute(env, "75 Outros Proveitos Operacionais M\nnot-a-code Conta\n", "chart", "import", "--global")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "processed 1, created 1, updated 0")
	assert.Contains(t, out.String(), "invalid account code")

	acc, err := f.Services.Chart.Resolver().Global().Find(f.Ctx, "75")
	require.NoError(t, err)
	assert.Equal(t, "Outros Proveitos Operacionais", acc.Description)
}

func TestChartImportFlagsAreExclusive(t *testing.T) {
	env, _, f := testEnv(t)
	err := execute(env, "", "chart", "import", "--global", "--company", f.TenantID().String())
	assert.Error(t, err)
}

func TestChartInitRejectsInitializedCompany(t *testing.T) {
	env, _, f := testEnv(t)
	assert.Error(t, execute(env, "", "chart", "init", "--company", f.TenantID().String()))
	assert.Error(t, execute(env, "", "chart", "init", "--company", "not-a-uuid"))
}

func TestTrialBalance(t *testing.T) {
	env, out, f := testEnv(t)
	cash := f.Account(t, "11.1")
	bank := f.Account(t, "12.1")

	_, err := f.Services.Posting.PostManual(f.Ctx, f.TenantID(), posting.ManualInput{
		Date:        apptest.Date(2024, 1, 1),
		Description: "Depósito",
		Lines: []posting.ManualLine{
			{AccountID: bank.ID, Side: posting.Debit, Amount: apptest.Amount("5000")},
			{AccountID: cash.ID, Side: posting.Credit, Amount: apptest.Amount("5000")},
		},
	})
	require.NoError(t, err)

	require.NoError(t, execute(env, "", "report", "trial-balance",
		"--company", f.TenantID().String(), "--from", "2024-01-01", "--to", "2024-12-31"))

	text := out.String()
	assert.Contains(t, text, "12.1")
	assert.Contains(t, text, "11.1")
	assert.Contains(t, text, "5000.00")
	assert.NotContains(t, text, "debits and credits differ")
}

func TestTrialBalanceRejectsBadDate(t *testing.T) {
	env, _, f := testEnv(t)
	err := execute(env, "", "report", "trial-balance", "--company", f.TenantID().String(), "--from", "01/01/2024")
	assert.Error(t, err)
}

func TestCloseYearDryRun(t *testing.T) {
	env, out, f := testEnv(t)

	require.NoError(t, execute(env, "", "close-year", "--company", f.TenantID().String(), "--year", "2024", "--dry-run"))
	assert.Contains(t, out.String(), "net result 0.00")
	assert.NotContains(t, out.String(), "entry")
}

func TestSeedIsRepeatable(t *testing.T) {
	env, out, _ := testEnv(t)

	require.NoError(t, execute(env, "", "seed", "--tax=false"))
	assert.Contains(t, out.String(), "template accounts created: 0")
	assert.NotContains(t, out.String(), "tax tables reset")
}

func TestMigrateWithoutDatabase(t *testing.T) {
	env, _, _ := testEnv(t)
	assert.Error(t, execute(env, "", "migrate", "version"))
}
