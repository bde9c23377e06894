package analytics

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/money"
)

// Discrepancy types.
const (
	IncomeOverestimate   = "income_overestimate"
	IncomeUnderestimate  = "income_underestimate"
	ExpenseUnderestimate = "expense_underestimate"
	ExpenseOverestimate  = "expense_overestimate"
)

// Severities shared by discrepancies and interpretations.
const (
	SeverityInfo     = "info"
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// RealityConfig tunes the declared-versus-detected comparison.
type RealityConfig struct {
	TolerancePercent float64
	Currency         string
}

// DefaultRealityConfig flags differences above 20%.
func DefaultRealityConfig() RealityConfig {
	return RealityConfig{TolerancePercent: 20, Currency: money.DefaultCurrency}
}

// Comparison is one declared value against its detected counterpart.
type Comparison struct {
	Declared          decimal.Decimal `json:"declared"`
	Detected          decimal.Decimal `json:"detected"`
	Difference        decimal.Decimal `json:"difference"`
	DifferencePercent float64         `json:"difference_percent"`
}

// Discrepancy is a comparison outside the tolerance.
type Discrepancy struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// RealityComparison is the result of CompareDeclared.
type RealityComparison struct {
	Income        Comparison    `json:"income_comparison"`
	Expenses      Comparison    `json:"expense_comparison"`
	Discrepancies []Discrepancy `json:"discrepancies"`
	Warnings      []string      `json:"warnings"`
}

func compare(declared, detected decimal.Decimal) Comparison {
	diff := detected.Sub(declared)
	return Comparison{
		Declared:          declared,
		Detected:          detected,
		Difference:        diff,
		DifferencePercent: percentOf(diff, declared),
	}
}

// CompareDeclared compares questionnaire income and living expenses with
// the ledger's monthly averages (totals divided by observed months).
func CompareDeclared(l models.Ledger, q *models.QuestionnaireAnswers, cfg RealityConfig) RealityComparison {
	out := RealityComparison{Discrepancies: []Discrepancy{}, Warnings: []string{}}
	if len(l) == 0 || q == nil {
		return out
	}

	totals := ComputeTotals(l)
	months := totals.MonthlyDivisor()
	out.Income = compare(q.MonthlyIncome, totals.Income.Div(months))
	out.Expenses = compare(q.MonthlyLivingExpenses, totals.Spending.Div(months))

	format := func(d decimal.Decimal) string { return money.Format(d, cfg.Currency) }
	describe := func(what string, c Comparison) string {
		return fmt.Sprintf("You declared %s of %s per month, the statement shows %s per month. Difference: %s (%+.1f%%).",
			what, format(c.Declared), format(c.Detected), format(c.Difference), c.DifferencePercent)
	}

	if math.Abs(out.Income.DifferencePercent) > cfg.TolerancePercent {
		if out.Income.Difference.IsPositive() {
			out.Discrepancies = append(out.Discrepancies, Discrepancy{
				Type:     IncomeOverestimate,
				Message:  describe("income", out.Income),
				Severity: SeverityMedium,
			})
		} else {
			out.Discrepancies = append(out.Discrepancies, Discrepancy{
				Type:     IncomeUnderestimate,
				Message:  describe("income", out.Income) + " Part of your income may not pass through this account.",
				Severity: SeverityLow,
			})
		}
	}

	if math.Abs(out.Expenses.DifferencePercent) > cfg.TolerancePercent {
		if out.Expenses.Difference.IsPositive() {
			out.Discrepancies = append(out.Discrepancies, Discrepancy{
				Type:     ExpenseUnderestimate,
				Message:  describe("expenses", out.Expenses) + " You spend more than you think.",
				Severity: SeverityHigh,
			})
			out.Warnings = append(out.Warnings, "You underestimate your expenses. This can lead to financial trouble.")
		} else {
			out.Discrepancies = append(out.Discrepancies, Discrepancy{
				Type:     ExpenseOverestimate,
				Message:  describe("expenses", out.Expenses) + " Part of your spending may go through other accounts.",
				Severity: SeverityLow,
			})
		}
	}
	return out
}
