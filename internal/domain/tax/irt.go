// Package tax holds the IRT bracket table and the catalog of tax rates.
package tax

import (
	"sort"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/types"
)

// Bracket is one row of the IRT table. Rate is a percentage.
type Bracket struct {
	Limit  types.Money     `db:"limit_amount" json:"limit"`
	Rate   decimal.Decimal `db:"rate" json:"rate"`
	Fixed  types.Money     `db:"fixed_amount" json:"fixed"`
	Excess types.Money     `db:"excess" json:"excess"`
}

// Table is an IRT bracket table.
type Table []Bracket

// DefaultBrackets is the AGT schedule used to reset the table.
func DefaultBrackets() Table {
	row := func(limit, rate, fixed, excess string) Bracket {
		return Bracket{
			Limit:  types.MustMoney(limit),
			Rate:   decimal.RequireFromString(rate),
			Fixed:  types.MustMoney(fixed),
			Excess: types.MustMoney(excess),
		}
	}
	return Table{
		row("100000", "0", "0", "0"),
		row("150000", "13", "0", "100001"),
		row("200000", "16", "12500", "150001"),
		row("300000", "18", "31250", "200001"),
		row("500000", "19", "49250", "300001"),
		row("1000000", "20", "87250", "500001"),
		row("1500000", "21", "187249", "1000001"),
		row("2000000", "22", "292249", "1500001"),
		row("2500000", "23", "402249", "2000001"),
		row("5000000", "24", "517249", "2500001"),
		row("10000000", "24.5", "1117249", "5000001"),
		row("99999999999", "25", "2342248", "10000001"),
	}
}

// Sorted returns the brackets ordered by ascending limit.
func (t Table) Sorted() Table {
	out := append(Table(nil), t...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Limit.LessThan(out[j].Limit) })
	return out
}

// Lookup returns the bracket with the smallest limit >= income, else the
// bracket with the largest limit. False when the table is empty.
func (t Table) Lookup(income types.Money) (Bracket, bool) {
	sorted := t.Sorted()
	if len(sorted) == 0 {
		return Bracket{}, false
	}
	for _, b := range sorted {
		if b.Limit.GreaterThanOrEqual(income) {
			return b, true
		}
	}
	return sorted[len(sorted)-1], true
}

// Compute returns the IRT due on taxable income:
// ceil((income - excess) * rate/100 + fixed).
//
// Income above the largest limit yields zero. The table is expected to end
// with an effectively unbounded bracket; this behavior is kept until the
// top rate is confirmed.
func (t Table) Compute(income types.Money) types.Money {
	income = types.PositivePart(income)
	b, ok := t.Lookup(income)
	if !ok || income.GreaterThan(b.Limit) {
		return types.Zero()
	}
	tax := types.Percent(income.Sub(b.Excess), b.Rate).Add(b.Fixed)
	return types.CeilUnit(tax)
}
