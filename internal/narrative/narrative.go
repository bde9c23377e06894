// Package narrative produces the templated advice texts of a report:
// recommendations, forecast scenarios, an action plan, a before/after
// projection and the financial reality summary.
package narrative

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/money"
)

// Generator renders narrative texts in one currency.
type Generator struct {
	Currency string
}

// New returns a Generator for currency, defaulting to KZT.
func New(currency string) Generator {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return Generator{Currency: currency}
}

func (g Generator) format(d decimal.Decimal) string {
	return money.Format(d.Round(0), g.Currency)
}

// signed formats d with an explicit leading "+" for non-negative values.
func (g Generator) signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return g.format(d)
	}
	return "+" + g.format(d)
}

var (
	twoTenths     = decimal.RequireFromString("0.2")
	threeTenths   = decimal.RequireFromString("0.3")
	half          = decimal.RequireFromString("0.5")
	eightTenths   = decimal.RequireFromString("0.8")
	fifteenPct    = decimal.RequireFromString("0.15")
	tenPct        = decimal.RequireFromString("0.1")
	fortyPct      = decimal.RequireFromString("0.4")
	hundred       = decimal.NewFromInt(100)
	leakLimit     = decimal.NewFromInt(20000)
	tenThousand   = decimal.NewFromInt(10000)
	creditPercent = 25.0
)
