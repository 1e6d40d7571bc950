package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/pgc"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/parties"
	"pgcledger/internal/domain/posting"
)

// Balance-sheet buckets. The prefixes come from an older numbering and do
// not match the posting roles (31, 32, 34.3).
var (
	assetPrefixes = []StatementLine{
		{Code: "11", Description: "Caixa"},
		{Code: "12", Description: "Bancos"},
		{Code: "211", Description: "Clientes"},
	}
	liabilityPrefixes = []StatementLine{
		{Code: "221", Description: "Fornecedores"},
		{Code: "2432", Description: "IVA liquidado"},
	}
)

var resultClasses = []string{"6", "7", "8"}

// Service provides report generation operations.
type Service struct {
	repo    Repository
	chart   *chart.Service
	journal *posting.Engine
	parties *parties.Service
}

// NewService creates a new reports service.
func NewService(repo Repository, chartService *chart.Service, engine *posting.Engine, partyService *parties.Service) *Service {
	return &Service{repo: repo, chart: chartService, journal: engine, parties: partyService}
}

// Balance sums the lines of one account split by side and signs the
// difference by the account's nature.
func (s *Service) Balance(ctx context.Context, tenantID, accountID id.ID, period Period) (Balance, error) {
	acc, err := s.chart.GetByID(ctx, &tenantID, accountID)
	if err != nil {
		return Balance{}, err
	}
	return s.balance(ctx, tenantID, acc, period)
}

func (s *Service) balance(ctx context.Context, tenantID id.ID, acc *chart.Account, period Period) (Balance, error) {
	rows, err := s.repo.Totals(ctx, tenantID, MovementFilter{Period: period, AccountIDs: []id.ID{acc.ID}})
	if err != nil {
		return Balance{}, fmt.Errorf("account totals: %w", err)
	}
	b := Balance{AccountID: acc.ID, Code: acc.Code, Debit: types.Zero(), Credit: types.Zero()}
	for _, r := range rows {
		b.Debit = b.Debit.Add(r.Debit)
		b.Credit = b.Credit.Add(r.Credit)
	}
	b.Signed = pgc.SignedBalance(acc.Code, b.Debit, b.Credit)
	return b, nil
}

// TrialBalance lists every account with movement in period, with the
// cumulative balance at the end of the prior year.
func (s *Service) TrialBalance(ctx context.Context, tenantID id.ID, period Period) (*TrialBalance, error) {
	rows, err := s.repo.Totals(ctx, tenantID, MovementFilter{Period: period})
	if err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}

	year := time.Now().Year()
	if period.To != nil {
		year = period.To.Year()
	}
	prior, err := s.signedByAccount(ctx, tenantID, MovementFilter{
		Period: Until(time.Date(year-1, time.December, 31, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		return nil, err
	}

	tb := &TrialBalance{
		From:        period.From,
		To:          period.To,
		Rows:        make([]TrialBalanceRow, 0, len(rows)),
		TotalDebit:  types.Zero(),
		TotalCredit: types.Zero(),
	}
	for _, r := range rows {
		signed := pgc.SignedBalance(r.Code, r.Debit, r.Credit)
		row := TrialBalanceRow{
			AccountID:     r.AccountID,
			Code:          r.Code,
			Description:   r.Description,
			Debit:         r.Debit,
			Credit:        r.Credit,
			DebitBalance:  types.PositivePart(signed),
			CreditBalance: types.PositivePart(signed.Neg()),
			PriorBalance:  types.Zero(),
		}
		if p, ok := prior[r.AccountID]; ok {
			row.PriorBalance = p
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(r.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(r.Credit)
	}
	sortByCode(tb.Rows, func(r TrialBalanceRow) string { return r.Code })
	return tb, nil
}

func (s *Service) signedByAccount(ctx context.Context, tenantID id.ID, filter MovementFilter) (map[id.ID]types.Money, error) {
	rows, err := s.repo.Totals(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}
	out := make(map[id.ID]types.Money, len(rows))
	for _, r := range rows {
		out[r.AccountID] = pgc.SignedBalance(r.Code, r.Debit, r.Credit)
	}
	return out, nil
}

// GeneralLedger renders the movements of one account with the opening
// balance at the day before period.From and a running balance.
func (s *Service) GeneralLedger(ctx context.Context, tenantID, accountID id.ID, period Period) (*GeneralLedger, error) {
	acc, err := s.chart.GetByID(ctx, &tenantID, accountID)
	if err != nil {
		return nil, err
	}

	opening := types.Zero()
	if period.From != nil {
		b, err := s.balance(ctx, tenantID, acc, Until(period.From.AddDate(0, 0, -1)))
		if err != nil {
			return nil, err
		}
		opening = b.Signed
	}

	movements, err := s.repo.Movements(ctx, tenantID, accountID, period)
	if err != nil {
		return nil, fmt.Errorf("account movements: %w", err)
	}

	gl := &GeneralLedger{
		AccountID:   acc.ID,
		Code:        acc.Code,
		Description: acc.Description,
		From:        period.From,
		To:          period.To,
		Opening:     opening,
		TotalDebit:  types.Zero(),
		TotalCredit: types.Zero(),
	}
	gl.Lines, gl.Closing = runningLines(acc.Code, opening, movements)
	for _, l := range gl.Lines {
		gl.TotalDebit = gl.TotalDebit.Add(l.Debit)
		gl.TotalCredit = gl.TotalCredit.Add(l.Credit)
	}
	return gl, nil
}

// runningLines accumulates movements by the nature of code.
func runningLines(code string, opening types.Money, movements []Movement) ([]LedgerLine, types.Money) {
	running := opening
	lines := make([]LedgerLine, 0, len(movements))
	for _, m := range movements {
		debit, credit := types.Zero(), types.Zero()
		if m.Side == posting.Debit {
			debit = m.Amount
		} else {
			credit = m.Amount
		}
		running = running.Add(pgc.SignedBalance(code, debit, credit))
		lines = append(lines, LedgerLine{Movement: m, Debit: debit, Credit: credit, Running: running})
	}
	return lines, running
}

// IncomeStatement reports classes 6 and 7 of year before closing. The
// result is revenues less expenses.
func (s *Service) IncomeStatement(ctx context.Context, tenantID id.ID, year int) (*IncomeStatement, error) {
	rows, err := s.repo.Totals(ctx, tenantID, MovementFilter{
		Period:       Year(year),
		CodePrefixes: []string{"6", "7"},
		ExcludeKinds: []posting.EntryKind{posting.KindClosing},
	})
	if err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}

	is := &IncomeStatement{Year: year, TotalRevenues: types.Zero(), TotalExpenses: types.Zero()}
	for _, r := range rows {
		signed := pgc.SignedBalance(r.Code, r.Debit, r.Credit)
		line := StatementLine{Code: r.Code, Description: r.Description, Amount: signed}
		switch pgc.ClassDigit(r.Code) {
		case "7":
			is.Revenues = append(is.Revenues, line)
			is.TotalRevenues = is.TotalRevenues.Add(signed)
		case "6":
			is.Expenses = append(is.Expenses, line)
			is.TotalExpenses = is.TotalExpenses.Add(signed)
		}
	}
	sortByCode(is.Revenues, func(l StatementLine) string { return l.Code })
	sortByCode(is.Expenses, func(l StatementLine) string { return l.Code })
	is.Result = is.TotalRevenues.Sub(is.TotalExpenses)
	return is, nil
}

// BalanceSheet aggregates the representative accounts at asOf. Equity is
// the residual of assets less liabilities.
func (s *Service) BalanceSheet(ctx context.Context, tenantID id.ID, asOf time.Time) (*BalanceSheet, error) {
	bs := &BalanceSheet{AsOf: asOf, TotalAssets: types.Zero(), TotalLiabilities: types.Zero()}

	for _, bucket := range assetPrefixes {
		amount, err := s.prefixBalance(ctx, tenantID, bucket.Code, asOf)
		if err != nil {
			return nil, err
		}
		bucket.Amount = amount
		bs.Assets = append(bs.Assets, bucket)
		bs.TotalAssets = bs.TotalAssets.Add(amount)
	}
	for _, bucket := range liabilityPrefixes {
		amount, err := s.prefixBalance(ctx, tenantID, bucket.Code, asOf)
		if err != nil {
			return nil, err
		}
		// liabilities sit on the credit side
		bucket.Amount = amount.Neg()
		bs.Liabilities = append(bs.Liabilities, bucket)
		bs.TotalLiabilities = bs.TotalLiabilities.Add(bucket.Amount)
	}
	bs.Equity = bs.TotalAssets.Sub(bs.TotalLiabilities)
	return bs, nil
}

func (s *Service) prefixBalance(ctx context.Context, tenantID id.ID, prefix string, asOf time.Time) (types.Money, error) {
	rows, err := s.repo.Totals(ctx, tenantID, MovementFilter{Period: Until(asOf), CodePrefixes: []string{prefix}})
	if err != nil {
		return types.Zero(), fmt.Errorf("account totals: %w", err)
	}
	debit, credit := types.Zero(), types.Zero()
	for _, r := range rows {
		debit = debit.Add(r.Debit)
		credit = credit.Add(r.Credit)
	}
	return pgc.SignedBalance(prefix, debit, credit), nil
}

// ResultsTrialBalance reports classes 6, 7 and 8 from 1 January to to,
// next to the same span of the prior year.
func (s *Service) ResultsTrialBalance(ctx context.Context, tenantID id.ID, to time.Time) (*ResultsTrialBalance, error) {
	from := time.Date(to.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	current, err := s.repo.Totals(ctx, tenantID, MovementFilter{
		Period:       Period{From: &from, To: &to},
		CodePrefixes: resultClasses,
		ExcludeKinds: []posting.EntryKind{posting.KindClosing},
	})
	if err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}
	priorFrom, priorTo := from.AddDate(-1, 0, 0), to.AddDate(-1, 0, 0)
	prior, err := s.repo.Totals(ctx, tenantID, MovementFilter{
		Period:       Period{From: &priorFrom, To: &priorTo},
		CodePrefixes: resultClasses,
		ExcludeKinds: []posting.EntryKind{posting.KindClosing},
	})
	if err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}

	rtb := &ResultsTrialBalance{
		From:        from,
		To:          to,
		TotalDebit:  types.Zero(),
		TotalCredit: types.Zero(),
		Result:      types.Zero(),
		PriorResult: types.Zero(),
	}
	rows := make(map[string]*ResultsRow)
	row := func(code, description string) *ResultsRow {
		r, ok := rows[code]
		if !ok {
			r = &ResultsRow{
				Code:        code,
				Description: description,
				Debit:       types.Zero(),
				Credit:      types.Zero(),
				Balance:     types.Zero(),
				Prior:       types.Zero(),
			}
			rows[code] = r
		}
		return r
	}
	for _, t := range current {
		r := row(t.Code, t.Description)
		r.Debit = r.Debit.Add(t.Debit)
		r.Credit = r.Credit.Add(t.Credit)
		r.Balance = pgc.SignedBalance(t.Code, r.Debit, r.Credit)
		rtb.TotalDebit = rtb.TotalDebit.Add(t.Debit)
		rtb.TotalCredit = rtb.TotalCredit.Add(t.Credit)
		rtb.Result = rtb.Result.Add(t.Credit.Sub(t.Debit))
	}
	for _, t := range prior {
		r := row(t.Code, t.Description)
		r.Prior = r.Prior.Add(pgc.SignedBalance(t.Code, t.Debit, t.Credit))
		rtb.PriorResult = rtb.PriorResult.Add(t.Credit.Sub(t.Debit))
	}
	for _, r := range rows {
		rtb.Rows = append(rtb.Rows, *r)
	}
	sortByCode(rtb.Rows, func(r ResultsRow) string { return r.Code })
	return rtb, nil
}

// VATMap sums the VAT charged on invoices and borne on purchases in a
// month. Payable is the difference, negative when VAT is recoverable.
func (s *Service) VATMap(ctx context.Context, tenantID id.ID, year, month int) (*VATMap, error) {
	if month < 1 || month > 12 {
		return nil, apperror.NewValidation("month must be between 1 and 12").WithDetail("month", month)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	period := Period{From: &from, To: &to}

	sales, err := s.repo.DocumentTaxTotals(ctx, tenantID, posting.SourceInvoice, period)
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}
	purchases, err := s.repo.DocumentTaxTotals(ctx, tenantID, posting.SourcePurchase, period)
	if err != nil {
		return nil, fmt.Errorf("purchase totals: %w", err)
	}
	return &VATMap{
		Year:          year,
		Month:         month,
		SalesBase:     sales.Base,
		SalesVAT:      sales.VAT,
		PurchasesBase: purchases.Base,
		PurchasesVAT:  purchases.VAT,
		Payable:       sales.VAT.Sub(purchases.VAT),
	}, nil
}

// Journal lists the entries of period in date order.
func (s *Service) Journal(ctx context.Context, tenantID id.ID, period Period) (*Journal, error) {
	entries, err := s.journal.Journal(ctx, tenantID, posting.JournalFilter{From: period.From, To: period.To})
	if err != nil {
		return nil, fmt.Errorf("journal entries: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].Number < entries[j].Number
	})
	j := &Journal{From: period.From, To: period.To, Entries: entries, TotalDebit: types.Zero(), TotalCredit: types.Zero()}
	for _, e := range entries {
		debit, credit := e.Totals()
		j.TotalDebit = j.TotalDebit.Add(debit)
		j.TotalCredit = j.TotalCredit.Add(credit)
	}
	return j, nil
}

// PartyStatement renders the shadow account of a party. Supplier balances
// are shown as amounts owed to the supplier.
func (s *Service) PartyStatement(ctx context.Context, tenantID, partyID id.ID, period Period) (*PartyStatement, error) {
	p, err := s.parties.GetByID(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	acc, err := s.parties.Account(ctx, p)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewBusinessRule(apperror.CodePostingAccountMissing, "party has no ledger account").
				WithDetail("ledgerCode", p.LedgerCode)
		}
		return nil, err
	}
	gl, err := s.GeneralLedger(ctx, tenantID, acc.ID, period)
	if err != nil {
		return nil, err
	}

	st := &PartyStatement{
		PartyID:    p.ID,
		Name:       p.Name,
		LedgerCode: acc.Code,
		Opening:    gl.Opening,
		Lines:      gl.Lines,
		Closing:    gl.Closing,
	}
	if p.Kind == parties.KindSupplier && pgc.NatureOf(acc.Code) == pgc.DebitNatured {
		st.Opening = st.Opening.Neg()
		st.Closing = st.Closing.Neg()
		for i := range st.Lines {
			st.Lines[i].Running = st.Lines[i].Running.Neg()
		}
	}
	return st, nil
}

func sortByCode[T any](rows []T, code func(T) string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.Compare(code(rows[i]), code(rows[j])) < 0
	})
}
