// Package reports renders the accounting reports of a tenant from its
// journal: balances, trial balances, ledgers and statements.
package reports

import (
	"time"

	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/posting"
)

// Period bounds entry dates; nil ends are open. Both ends are inclusive.
type Period struct {
	From *time.Time
	To   *time.Time
}

// Year returns 1 January to 31 December of year.
func Year(year int) Period {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return Period{From: &from, To: &to}
}

// Until returns the open period ending on to.
func Until(to time.Time) Period {
	return Period{To: &to}
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d time.Time) bool {
	if p.From != nil && d.Before(*p.From) {
		return false
	}
	if p.To != nil && d.After(*p.To) {
		return false
	}
	return true
}

// MovementFilter narrows the aggregated movements.
type MovementFilter struct {
	Period
	AccountIDs []id.ID

	// CodePrefixes keeps accounts whose code starts with any prefix
	CodePrefixes []string

	ExcludeKinds []posting.EntryKind
}

// AccountTotals are the debit and credit sums of one account.
type AccountTotals struct {
	AccountID   id.ID       `db:"account_id" json:"accountId"`
	Code        string      `db:"code" json:"code"`
	Description string      `db:"description" json:"description"`
	Debit       types.Money `db:"debit" json:"debit"`
	Credit      types.Money `db:"credit" json:"credit"`
}

// Movement is one journal line as it appears in a ledger.
type Movement struct {
	EntryID     id.ID        `db:"entry_id" json:"entryId"`
	Number      string       `db:"number" json:"number"`
	Date        time.Time    `db:"date" json:"date"`
	Description string       `db:"description" json:"description"`
	Memo        string       `db:"memo" json:"memo,omitempty"`
	Side        posting.Side `db:"side" json:"side"`
	Amount      types.Money  `db:"amount" json:"amount"`
}

// TaxTotals sums the bases and VAT of posted documents.
type TaxTotals struct {
	Base types.Money `db:"base" json:"base"`
	VAT  types.Money `db:"vat" json:"vat"`
}

// Balance is the account balance contract.
type Balance struct {
	AccountID id.ID       `json:"accountId"`
	Code      string      `json:"code"`
	Debit     types.Money `json:"debitTotal"`
	Credit    types.Money `json:"creditTotal"`
	Signed    types.Money `json:"signedBalance"`
}

// TrialBalanceRow is one account of the balancete.
type TrialBalanceRow struct {
	AccountID     id.ID       `json:"accountId"`
	Code          string      `json:"code"`
	Description   string      `json:"description"`
	Debit         types.Money `json:"debit"`
	Credit        types.Money `json:"credit"`
	// The nature-signed balance split by sign: DebitBalance holds it when
	// positive, CreditBalance holds its magnitude when negative.
	DebitBalance  types.Money `json:"debitBalance"`
	CreditBalance types.Money `json:"creditBalance"`
	PriorBalance  types.Money `json:"priorBalance"`
}

// TrialBalance lists every account with movement in a period.
type TrialBalance struct {
	From        *time.Time        `json:"from,omitempty"`
	To          *time.Time        `json:"to,omitempty"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  types.Money       `json:"totalDebit"`
	TotalCredit types.Money       `json:"totalCredit"`
}

// IsBalanced reports whether the control totals agree.
func (tb *TrialBalance) IsBalanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}

// LedgerLine is a movement with the running balance after it.
type LedgerLine struct {
	Movement
	Debit   types.Money `json:"debit"`
	Credit  types.Money `json:"credit"`
	Running types.Money `json:"running"`
}

// GeneralLedger is the razão of one account.
type GeneralLedger struct {
	AccountID   id.ID        `json:"accountId"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	From        *time.Time   `json:"from,omitempty"`
	To          *time.Time   `json:"to,omitempty"`
	Opening     types.Money  `json:"opening"`
	Lines       []LedgerLine `json:"lines"`
	TotalDebit  types.Money  `json:"totalDebit"`
	TotalCredit types.Money  `json:"totalCredit"`
	Closing     types.Money  `json:"closing"`
}

// StatementLine is one account on a statement.
type StatementLine struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Amount      types.Money `json:"amount"`
}

// IncomeStatement is the demonstração de resultados of a year.
type IncomeStatement struct {
	Year          int             `json:"year"`
	Revenues      []StatementLine `json:"revenues"`
	Expenses      []StatementLine `json:"expenses"`
	TotalRevenues types.Money     `json:"totalRevenues"`
	TotalExpenses types.Money     `json:"totalExpenses"`
	Result        types.Money     `json:"result"`
}

// BalanceSheet is the simplified balance sheet at a date.
type BalanceSheet struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []StatementLine `json:"assets"`
	Liabilities      []StatementLine `json:"liabilities"`
	TotalAssets      types.Money     `json:"totalAssets"`
	TotalLiabilities types.Money     `json:"totalLiabilities"`
	Equity           types.Money     `json:"equity"`
}

// ResultsRow compares a result account with the same period a year before.
type ResultsRow struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Debit       types.Money `json:"debit"`
	Credit      types.Money `json:"credit"`
	Balance     types.Money `json:"balance"`
	Prior       types.Money `json:"prior"`
}

// ResultsTrialBalance is the balancete of classes 6, 7 and 8.
type ResultsTrialBalance struct {
	From        time.Time    `json:"from"`
	To          time.Time    `json:"to"`
	Rows        []ResultsRow `json:"rows"`
	TotalDebit  types.Money  `json:"totalDebit"`
	TotalCredit types.Money  `json:"totalCredit"`
	Result      types.Money  `json:"result"`
	PriorResult types.Money  `json:"priorResult"`
}

// VATMap summarizes the VAT of one month.
type VATMap struct {
	Year          int         `json:"year"`
	Month         int         `json:"month"`
	SalesBase     types.Money `json:"salesBase"`
	SalesVAT      types.Money `json:"salesVat"`
	PurchasesBase types.Money `json:"purchasesBase"`
	PurchasesVAT  types.Money `json:"purchasesVat"`
	Payable       types.Money `json:"payable"`
}

// Journal is the diário: entries in date order with their lines.
type Journal struct {
	From        *time.Time       `json:"from,omitempty"`
	To          *time.Time       `json:"to,omitempty"`
	Entries     []*posting.Entry `json:"entries"`
	TotalDebit  types.Money      `json:"totalDebit"`
	TotalCredit types.Money      `json:"totalCredit"`
}

// PartyStatement is the conta corrente of a customer or supplier: what the
// party owes (customers) or is owed (suppliers) after each movement.
type PartyStatement struct {
	PartyID    id.ID        `json:"partyId"`
	Name       string       `json:"name"`
	LedgerCode string       `json:"ledgerCode"`
	Opening    types.Money  `json:"opening"`
	Lines      []LedgerLine `json:"lines"`
	Closing    types.Money  `json:"closing"`
}
