package narrative

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
)

// Scenario codes.
const (
	ScenarioNoChange        = "no_change"
	ScenarioRecommendations = "follow_recommendations"
	ScenarioOptimizeCredit  = "optimize_credit"
)

// Scenario risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

var (
	six    = decimal.NewFromInt(6)
	twelve = decimal.NewFromInt(12)
)

// Scenario is a linear 6- and 12-month projection of a monthly balance.
type Scenario struct {
	Code               string          `json:"code"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	MonthlyBalance     decimal.Decimal `json:"monthly_balance"`
	SixMonthOutcome    decimal.Decimal `json:"six_month_outcome"`
	TwelveMonthOutcome decimal.Decimal `json:"twelve_month_outcome"`
	RiskLevel          string          `json:"risk_level"`
	Summary            string          `json:"summary"`
}

func (g Generator) project(code, title, description string, monthly decimal.Decimal, risk string) Scenario {
	s := Scenario{
		Code:               code,
		Title:              title,
		Description:        description,
		MonthlyBalance:     monthly,
		SixMonthOutcome:    monthly.Mul(six),
		TwelveMonthOutcome: monthly.Mul(twelve),
		RiskLevel:          risk,
	}
	s.Summary = fmt.Sprintf("In 6 months: %s. In a year: %s.", g.signed(s.SixMonthOutcome), g.signed(s.TwelveMonthOutcome))
	return s
}

// Scenarios projects the statement period's net result as one month's
// balance under three assumptions: nothing changes, every recommendation is
// followed, or credit costs drop by 30% when the credit load is above 25%.
func (g Generator) Scenarios(totals analytics.Totals, credit analytics.CreditAnalysis, recs []Recommendation) []Scenario {
	net := totals.Net

	risk := RiskMedium
	if net.IsNegative() {
		risk = RiskHigh
	}
	noChange := g.project(ScenarioNoChange, "If nothing changes", "The current situation continues unchanged", net, risk)
	if net.IsZero() {
		noChange.Summary = "Your balance will not change."
	}

	savings := TotalSavings(recs)
	followed := net.Add(savings)
	risk = RiskMedium
	if followed.IsPositive() {
		risk = RiskLow
	}
	follow := g.project(ScenarioRecommendations, "If you follow the recommendations",
		fmt.Sprintf("You apply every recommendation (saving about %s a month)", g.format(savings)), followed, risk)
	follow.Summary += fmt.Sprintf(" Savings: %s a month.", g.format(savings))

	reduction := decimal.Zero
	if credit.PercentageOfExpenses > creditPercent {
		reduction = credit.TotalMonthly.Mul(threeTenths)
	}
	optimized := net.Add(reduction)
	risk = RiskMedium
	if optimized.IsPositive() {
		risk = RiskLow
	}
	description := "Your credit load is already reasonable"
	if reduction.IsPositive() {
		description = fmt.Sprintf("Cut the credit load by 30%% (saving about %s a month)", g.format(reduction))
	}
	optimize := g.project(ScenarioOptimizeCredit, "If you optimise your credit", description, optimized, risk)
	if !reduction.IsPositive() {
		optimize.Summary = "Changes would be minimal."
	}

	return []Scenario{noChange, follow, optimize}
}
