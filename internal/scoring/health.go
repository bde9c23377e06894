// Package scoring turns detector results into bounded scores with status
// labels.
package scoring

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
)

// Health statuses.
const (
	StatusExcellent = "excellent"
	StatusGood      = "good"
	StatusAtRisk    = "at_risk"
	StatusCritical  = "critical"
)

// Status colours used by front ends.
const (
	ColorPositive = "positive"
	ColorWarning  = "warning"
	ColorNegative = "negative"
)

// Factor codes of the health score.
const (
	FactorExpenseRatio = "expense_ratio"
	FactorCreditLoad   = "credit_load"
	FactorBuffer       = "safety_buffer"
	FactorLeaks        = "money_leaks"
	FactorNet          = "net_result"
)

// HealthInput is what the health score is computed from.
type HealthInput struct {
	Totals        analytics.Totals
	CreditPercent float64
	LeakMonthly   decimal.Decimal
	Closing       *decimal.Decimal
}

// Factor is one scored component of the health score.
type Factor struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Max   int    `json:"max"`
	Note  string `json:"note"`
}

// HealthScore is the 0-100 financial health score.
type HealthScore struct {
	Score       float64  `json:"score"`
	Status      string   `json:"status"`
	StatusColor string   `json:"status_color"`
	Factors     []Factor `json:"factors"`
	Explanation string   `json:"explanation"`
}

// Health scores five factors and subtracts each factor's deficit from 100.
func Health(in HealthInput) HealthScore {
	var factors []Factor

	income, spending := in.Totals.Income, in.Totals.Spending

	expense := Factor{Code: FactorExpenseRatio, Name: "Expenses to income", Max: 30}
	if income.IsPositive() {
		ratio := spending.Div(income).Mul(decimal.NewFromInt(100)).InexactFloat64()
		switch {
		case ratio <= 70:
			expense.Score, expense.Note = 30, "Excellent ratio"
		case ratio <= 85:
			expense.Score, expense.Note = 20, "Good ratio"
		case ratio <= 100:
			expense.Score, expense.Note = 10, "Expenses equal income"
		default:
			expense.Score, expense.Note = 0, "Expenses exceed income"
		}
	} else {
		expense.Note = "No income"
	}
	factors = append(factors, expense)

	credit := Factor{Code: FactorCreditLoad, Name: "Credit load", Max: 25}
	switch pct := in.CreditPercent; {
	case pct <= 10:
		credit.Score, credit.Note = 25, "Low load"
	case pct <= 20:
		credit.Score, credit.Note = 20, "Moderate load"
	case pct <= 30:
		credit.Score, credit.Note = 10, "High load"
	default:
		credit.Score, credit.Note = 0, "Critical load"
	}
	factors = append(factors, credit)

	buffer := Factor{Code: FactorBuffer, Name: "Safety buffer", Max: 20}
	months := bufferMonths(spending, in.Closing, in.Totals.Months)
	switch {
	case months >= 6:
		buffer.Score, buffer.Note = 20, fmt.Sprintf("Covers %.1f months", months)
	case months >= 3:
		buffer.Score, buffer.Note = 15, fmt.Sprintf("Covers %.1f months", months)
	case months >= 1:
		buffer.Score, buffer.Note = 8, fmt.Sprintf("Covers only %.1f months", months)
	default:
		buffer.Score, buffer.Note = 0, "No safety buffer"
	}
	factors = append(factors, buffer)

	leaks := Factor{Code: FactorLeaks, Name: "Unnoticed spending", Max: 15}
	var leakPct float64
	if spending.IsPositive() {
		leakPct = in.LeakMonthly.Div(spending).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	switch {
	case leakPct <= 5:
		leaks.Score, leaks.Note = 15, "Minimal unnoticed spending"
	case leakPct <= 10:
		leaks.Score, leaks.Note = 10, "Moderate unnoticed spending"
	case leakPct <= 20:
		leaks.Score, leaks.Note = 5, "High unnoticed spending"
	default:
		leaks.Score, leaks.Note = 0, "Critical unnoticed spending"
	}
	factors = append(factors, leaks)

	net := Factor{Code: FactorNet, Name: "Net result", Max: 10, Note: "Negative balance"}
	if in.Totals.Net.IsPositive() {
		net.Score, net.Note = 10, "Positive balance"
	}
	factors = append(factors, net)

	score := 100.0
	for _, f := range factors {
		score -= float64(f.Max - f.Score)
	}
	score = math.Round(math.Max(0, math.Min(100, score))*10) / 10

	out := HealthScore{Score: score, Factors: factors}
	switch {
	case score >= 80:
		out.Status, out.StatusColor = StatusExcellent, ColorPositive
		out.Explanation = "Your finances are in excellent shape. Spending is under control, the credit load is acceptable and there is a safety buffer."
	case score >= 60:
		out.Status, out.StatusColor = StatusGood, ColorPositive
		out.Explanation = "Your finances are in order, with room to improve. Watch the credit load and unnoticed spending, they can erode stability."
	case score >= 40:
		out.Status, out.StatusColor = StatusAtRisk, ColorWarning
		out.Explanation = "Your finances are at risk. Spending is too high relative to income or the credit load is critical. Act now to stabilise."
	default:
		out.Status, out.StatusColor = StatusCritical, ColorNegative
		out.Explanation = "Your finances are in a critical state. Spending exceeds income, credit obligations are high and there is no safety buffer."
	}
	return out
}

// bufferMonths is closing / (spending / max(1, months)), or 0 without a
// closing balance or spending.
func bufferMonths(spending decimal.Decimal, closing *decimal.Decimal, months int) float64 {
	if closing == nil || !spending.IsPositive() {
		return 0
	}
	monthly := spending.Div(decimal.NewFromInt(int64(max(1, months))))
	return closing.Div(monthly).InexactFloat64()
}
