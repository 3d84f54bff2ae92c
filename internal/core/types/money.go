// Package types provides shared value types and money math.
package types

import (
	"github.com/shopspring/decimal"
)

// Money is a monetary value with full decimal precision.
// Backed by decimal.Decimal to avoid floating point drift; persisted as
// NUMERIC(14,2).
type Money = decimal.Decimal

// MoneyScale is the number of fractional digits stored for money values.
const MoneyScale int32 = 2

// MustMoney parses a Money value, panicking on error. For constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// TotalAmount computes quantity x unit price rounded to MoneyScale.
// A nil unit price yields zero; the caller-supplied total is never trusted.
func TotalAmount(quantity int64, unitPrice *Money) Money {
	if unitPrice == nil {
		return decimal.Zero
	}
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Round(MoneyScale)
}
