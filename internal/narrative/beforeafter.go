package narrative

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
)

// Snapshot is one side of the before/after comparison.
type Snapshot struct {
	NetBalance              decimal.Decimal `json:"net_balance"`
	CreditPercentage        float64         `json:"credit_percentage"`
	MoneyLeaks              decimal.Decimal `json:"money_leaks"`
	MonthlySavingsPotential decimal.Decimal `json:"monthly_savings_potential"`
}

// Improvement is the difference between the two snapshots.
type Improvement struct {
	NetChange       decimal.Decimal `json:"net_change"`
	CreditReduction float64         `json:"credit_reduction"`
	LeakReduction   decimal.Decimal `json:"leak_reduction"`
}

// BeforeAfterResult compares today with the situation after following the
// recommendations.
type BeforeAfterResult struct {
	Current     Snapshot    `json:"current"`
	After       Snapshot    `json:"after"`
	Improvement Improvement `json:"improvement"`
}

// BeforeAfter assumes credit spending drops by 20%, leaks halve and every
// recommended saving is added to the net result.
func (g Generator) BeforeAfter(totals analytics.Totals, credit analytics.CreditAnalysis, leaks analytics.LeakAnalysis, recs []Recommendation) BeforeAfterResult {
	savings := TotalSavings(recs)

	current := Snapshot{
		NetBalance:       totals.Net,
		CreditPercentage: credit.PercentageOfExpenses,
		MoneyLeaks:       leaks.TotalMonthly,
	}

	var futureCreditPct float64
	futureSpending := totals.Spending.Sub(savings)
	if futureSpending.IsPositive() {
		futureCreditPct = credit.TotalMonthly.Mul(eightTenths).Div(futureSpending).Mul(hundred).InexactFloat64()
	}
	after := Snapshot{
		NetBalance:              totals.Net.Add(savings),
		CreditPercentage:        futureCreditPct,
		MoneyLeaks:              leaks.TotalMonthly.Mul(half),
		MonthlySavingsPotential: savings,
	}

	return BeforeAfterResult{
		Current: current,
		After:   after,
		Improvement: Improvement{
			NetChange:       after.NetBalance.Sub(current.NetBalance),
			CreditReduction: current.CreditPercentage - after.CreditPercentage,
			LeakReduction:   current.MoneyLeaks.Sub(after.MoneyLeaks),
		},
	}
}
