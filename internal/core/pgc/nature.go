package pgc

import "github.com/shopspring/decimal"

// Nature tells on which side an account's balance normally sits.
type Nature int

const (
	// DebitNatured accounts report debit minus credit.
	DebitNatured Nature = iota
	// CreditNatured accounts report credit minus debit.
	CreditNatured
)

func (n Nature) String() string {
	if n == DebitNatured {
		return "debit"
	}
	return "credit"
}

// NatureOf derives the nature from the first character of the code.
// Classes 1, 2, 3 and 6 are debit-natured; everything else is credit-natured.
func NatureOf(code string) Nature {
	switch ClassDigit(code) {
	case "1", "2", "3", "6":
		return DebitNatured
	default:
		return CreditNatured
	}
}

// SignedBalance applies the nature of code to its debit and credit totals.
func SignedBalance(code string, debit, credit decimal.Decimal) decimal.Decimal {
	if NatureOf(code) == DebitNatured {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}
