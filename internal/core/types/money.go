// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromInt creates a Money value from a whole amount.
func NewMoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Percent returns amount * rate / 100 without rounding.
func Percent(amount Money, rate decimal.Decimal) Money {
	return amount.Mul(rate).Div(hundred)
}

// CeilUnit rounds toward positive infinity to a whole unit.
// Tax and social security amounts use this rule, never banker's rounding.
func CeilUnit(m Money) Money {
	return m.Ceil()
}

// Round2 rounds half away from zero to cents.
func Round2(m Money) Money {
	return m.Round(2)
}

// Sum adds all values.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// PositivePart returns m if m > 0, otherwise zero.
func PositivePart(m Money) Money {
	if m.IsPositive() {
		return m
	}
	return decimal.Zero
}
