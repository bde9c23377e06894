// Package money formats decimal amounts for human-readable report text.
package money

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the statement currency when none is configured.
const DefaultCurrency = "KZT"

// Format renders amount with the currency's grapheme, grouping and fraction
// digits. Unknown currency codes fall back to "1234.56 CODE".
func Format(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}

	cur := gomoney.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return gomoney.New(minor, code).Display()
}

// Known reports whether the currency code is a known ISO-4217 code.
func Known(currency string) bool {
	return gomoney.GetCurrency(strings.ToUpper(strings.TrimSpace(currency))) != nil
}
