package narrative

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
	"github.com/insightdelivered/statement-analyzer/internal/categories"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Recommendation codes.
const (
	CodeReduceCredit     = "reduce_credit"
	CodeCutLeaks         = "cut_leaks"
	CodeOptimizeCategory = "optimize_category"
	CodeCloseGap         = "close_gap"
	CodeReviewTransfers  = "review_transfers"
	CodeTrackExpenses    = "track_expenses"
)

// Impact levels.
const (
	ImpactLow      = "low"
	ImpactMedium   = "medium"
	ImpactHigh     = "high"
	ImpactCritical = "critical"
)

const (
	minRecommendations = 3
	maxRecommendations = 5
)

// Recommendation is one piece of advice with its estimated monthly saving.
type Recommendation struct {
	Code           string          `json:"code"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	MonthlySavings decimal.Decimal `json:"monthly_savings"`
	Impact         string          `json:"impact"`
}

// RecommendationInput is what recommendations are derived from.
type RecommendationInput struct {
	Totals     analytics.Totals
	Credit     analytics.CreditAnalysis
	Leaks      analytics.LeakAnalysis
	Categories []analytics.CategoryTotal
}

// Recommendations runs each rule independently, pads the list to three with
// a generic tip and keeps at most five.
func (g Generator) Recommendations(in RecommendationInput) []Recommendation {
	var out []Recommendation
	spending := in.Totals.Spending

	if in.Credit.PercentageOfExpenses > creditPercent {
		out = append(out, Recommendation{
			Code:  CodeReduceCredit,
			Title: "Reduce your credit load",
			Description: fmt.Sprintf("Credit payments are %.1f%% of your expenses. Consider refinancing or early repayment.",
				in.Credit.PercentageOfExpenses),
			MonthlySavings: in.Credit.TotalMonthly.Mul(twoTenths),
			Impact:         ImpactHigh,
		})
	}

	if top, ok := in.Leaks.Top(); ok && in.Leaks.TotalMonthly.GreaterThan(leakLimit) {
		out = append(out, Recommendation{
			Code:           CodeCutLeaks,
			Title:          "Cut unnoticed spending",
			Description:    fmt.Sprintf("%s takes %s a month. Check whether these purchases are necessary.", quote(top.Merchant), g.format(top.Total)),
			MonthlySavings: top.Total.Mul(half),
			Impact:         ImpactMedium,
		})
	}

	if len(in.Categories) > 0 {
		top := in.Categories[0]
		if top.Spending.GreaterThan(spending.Mul(threeTenths)) {
			out = append(out, Recommendation{
				Code:  CodeOptimizeCategory,
				Title: fmt.Sprintf("Optimise spending on %s", top.Category),
				Description: fmt.Sprintf("This category takes %s%% of all expenses. Look for cheaper options.",
					top.Spending.Div(spending).Mul(hundred).StringFixed(1)),
				MonthlySavings: top.Spending.Mul(fifteenPct),
				Impact:         ImpactMedium,
			})
		}
	}

	if in.Totals.Net.IsNegative() {
		gap := in.Totals.Net.Abs()
		out = append(out, Recommendation{
			Code:  CodeCloseGap,
			Title: "Increase income or cut expenses",
			Description: fmt.Sprintf("Your expenses exceed your income by %s. Either raise income or cut spending by at least this amount.",
				g.format(gap)),
			MonthlySavings: gap,
			Impact:         ImpactCritical,
		})
	}

	if transfers, ok := analytics.FindCategory(in.Categories, categories.Transfers); ok && transfers.Spending.GreaterThan(spending.Mul(fortyPct)) {
		out = append(out, Recommendation{
			Code:  CodeReviewTransfers,
			Title: "Review your transfers",
			Description: fmt.Sprintf("Transfers are %s%% of expenses. Make sure every transfer is necessary.",
				transfers.Spending.Div(spending).Mul(hundred).StringFixed(1)),
			MonthlySavings: transfers.Spending.Mul(tenPct),
			Impact:         ImpactMedium,
		})
	}

	for len(out) < minRecommendations {
		out = append(out, Recommendation{
			Code:        CodeTrackExpenses,
			Title:       "Track your spending",
			Description: "Review your spending regularly to see where the money goes.",
			Impact:      ImpactLow,
		})
	}
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

// Prioritize reorders recommendations for the declared goal: reduce_debt
// puts credit advice first, save orders by savings. Other goals keep the
// rule order.
func Prioritize(recs []Recommendation, goal string) []Recommendation {
	out := make([]Recommendation, len(recs))
	copy(out, recs)
	switch goal {
	case models.GoalReduceDebt:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Code == CodeReduceCredit && out[j].Code != CodeReduceCredit
		})
	case models.GoalSave:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].MonthlySavings.GreaterThan(out[j].MonthlySavings)
		})
	}
	return out
}

// TotalSavings sums the estimated monthly savings.
func TotalSavings(recs []Recommendation) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range recs {
		sum = sum.Add(r.MonthlySavings)
	}
	return sum
}

func quote(s string) string { return "'" + s + "'" }
