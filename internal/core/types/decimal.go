// Package types provides common value types.
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// ParseMoney parses a price as sent by clients. An empty string is zero.
// Thousands separators ("1,250,000") are tolerated.
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// LineTotal returns price*qty rounded to 2 places.
func LineTotal(price Money, qty int64) Money {
	return price.Mul(decimal.NewFromInt(qty)).Round(2)
}
