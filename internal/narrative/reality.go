package narrative

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Interpretation categories.
const (
	AreaIncome         = "income"
	AreaExpenses       = "expenses"
	AreaCreditBehavior = "credit_behavior"
	AreaDebtLoad       = "debt_load"
)

var (
	upperBand = decimal.RequireFromString("1.2")
	lowerBand = eightTenths
)

// DeclaredView is what the user believes about their finances.
type DeclaredView struct {
	MonthlyIncome         decimal.Decimal  `json:"monthly_income"`
	MonthlyExpenses       decimal.Decimal  `json:"monthly_expenses"`
	MonthlyCreditPayments decimal.Decimal  `json:"monthly_credit_payments"`
	TotalDebt             *decimal.Decimal `json:"total_debt"`
	SafetyBuffer          string           `json:"safety_buffer"`
	IncomeStability       string           `json:"income_stability"`
}

// CreditBehavior is the credit statement seen from the user's side.
type CreditBehavior struct {
	LoansIssued decimal.Decimal `json:"loans_issued"`
	Repayments  decimal.Decimal `json:"repayments"`
	NetFlow     decimal.Decimal `json:"net_flow"`
	Frequency   int             `json:"frequency"`
	Refinancing bool            `json:"refinancing"`
}

// DetectedView is what the transactions show.
type DetectedView struct {
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses"`
	CreditBehavior  CreditBehavior  `json:"credit_behavior"`
}

// Interpretation is one advisor remark.
type Interpretation struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// RealitySummary contrasts the declared and detected situations.
type RealitySummary struct {
	WhatYouThink         DeclaredView            `json:"what_you_think"`
	WhatTransactionsShow DetectedView            `json:"what_transactions_show"`
	WhatThisMeans        []Interpretation        `json:"what_this_means"`
	Discrepancies        []analytics.Discrepancy `json:"discrepancies"`
}

// RealitySummary builds the three-part reality summary. statement may be nil
// when no credit statement was supplied.
func (g Generator) RealitySummary(q *models.QuestionnaireAnswers, cmp analytics.RealityComparison, statement *analytics.CreditStatementAnalysis) RealitySummary {
	out := RealitySummary{
		WhatThisMeans: []Interpretation{},
		Discrepancies: cmp.Discrepancies,
	}
	if out.Discrepancies == nil {
		out.Discrepancies = []analytics.Discrepancy{}
	}
	if q == nil {
		return out
	}

	out.WhatYouThink = DeclaredView{
		MonthlyIncome:         q.MonthlyIncome,
		MonthlyExpenses:       q.MonthlyLivingExpenses,
		MonthlyCreditPayments: q.MonthlyCreditPayments,
		TotalDebt:             q.TotalOutstandingDebt,
		SafetyBuffer:          q.FinancialSafetyMonths,
		IncomeStability:       q.IncomeStability,
	}

	income, expenses := cmp.Income.Detected, cmp.Expenses.Detected
	out.WhatTransactionsShow = DetectedView{MonthlyIncome: income, MonthlyExpenses: expenses}
	if statement != nil {
		out.WhatTransactionsShow.CreditBehavior = CreditBehavior{
			LoansIssued: statement.TotalLoansIssued,
			Repayments:  statement.TotalRepayments,
			NetFlow:     statement.NetCreditFlow,
			Frequency:   statement.LoanFrequency,
			Refinancing: statement.RefinancingDetected,
		}
	}

	add := func(area, severity, msg string) {
		out.WhatThisMeans = append(out.WhatThisMeans, Interpretation{Category: area, Message: msg, Severity: severity})
	}

	switch {
	case income.GreaterThan(q.MonthlyIncome.Mul(upperBand)):
		add(AreaIncome, analytics.SeverityInfo,
			"Your actual income is higher than declared. You may be missing some income sources, or part of the inflow is borrowed money.")
	case income.LessThan(q.MonthlyIncome.Mul(lowerBand)):
		add(AreaIncome, analytics.SeverityWarning,
			"Your actual income is lower than declared. Part of it may go through other accounts, or your income is unstable.")
	}

	switch {
	case expenses.GreaterThan(q.MonthlyLivingExpenses.Mul(upperBand)):
		add(AreaExpenses, analytics.SeverityCritical,
			"You spend more than you think. Underestimating expenses leads to debt.")
	case expenses.LessThan(q.MonthlyLivingExpenses.Mul(lowerBand)):
		add(AreaExpenses, analytics.SeverityInfo,
			"Your actual expenses are lower than declared. Some spending may go through other accounts or cards.")
	}

	if statement != nil {
		if statement.RefinancingDetected {
			add(AreaCreditBehavior, analytics.SeverityCritical,
				"Signs of refinancing: new loans are taken to repay old ones.")
		}
		if statement.CreditSpiralRisk == analytics.SpiralHigh || statement.CreditSpiralRisk == analytics.SpiralMedium {
			add(AreaCreditBehavior, analytics.SeverityCritical,
				"Your borrowing pattern points to a credit spiral. Frequent new loans are a red flag.")
		}
	}

	if q.TotalOutstandingDebt != nil && q.TotalOutstandingDebt.IsPositive() && q.MonthlyIncome.IsPositive() {
		ratio := q.TotalOutstandingDebt.Div(q.MonthlyIncome).InexactFloat64()
		switch {
		case ratio > 12:
			add(AreaDebtLoad, analytics.SeverityCritical,
				fmt.Sprintf("Your debt equals %.1f months of income. This is a critically high debt load.", ratio))
		case ratio > 6:
			add(AreaDebtLoad, analytics.SeverityWarning,
				fmt.Sprintf("Your debt equals %.1f months of income. This is a high debt load.", ratio))
		}
	}

	return out
}
