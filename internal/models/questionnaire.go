package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidQuestionnaire is returned for malformed declared-data input.
var ErrInvalidQuestionnaire = errors.New("invalid questionnaire")

// Primary goals a user can declare.
const (
	GoalReduceDebt        = "reduce_debt"
	GoalSave              = "save"
	GoalStabilize         = "stabilize"
	GoalUnderstandReality = "understand_reality"
)

var (
	incomeStabilities = []string{"stable", "fluctuating", "unstable"}
	perceptions       = []string{"", "low", "medium", "high"}
	safetyMonths      = []string{"0", "<1", "1-3", "3+"}
	goals             = []string{GoalReduceDebt, GoalSave, GoalStabilize, GoalUnderstandReality}
	debtRanges        = []string{"", "0-100k", "100k-500k", "500k-1m", "1m-3m", "3m+"}
)

// QuestionnaireAnswers is the user's self-reported financial situation.
type QuestionnaireAnswers struct {
	MonthlyIncome         decimal.Decimal  `json:"monthly_income"`
	IncomeStability       string           `json:"income_stability"`
	MonthlyLivingExpenses decimal.Decimal  `json:"monthly_living_expenses"`
	MonthlyCreditPayments decimal.Decimal  `json:"monthly_credit_payments"`
	TotalOutstandingDebt  *decimal.Decimal `json:"total_outstanding_debt,omitempty"`
	TotalDebtRange        string           `json:"total_debt_range,omitempty"`
	FinancialSafetyMonths string           `json:"financial_safety_months"`
	PrimaryGoal           string           `json:"primary_goal"`
	CreditLoadPerception  string           `json:"credit_load_perception,omitempty"`
	HasSavings            *bool            `json:"has_savings,omitempty"`
}

// ParseQuestionnaire decodes, defaults and validates a JSON questionnaire.
func ParseQuestionnaire(data []byte) (*QuestionnaireAnswers, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var q QuestionnaireAnswers
	if err := dec.Decode(&q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestionnaire, err)
	}
	q.ApplyDefaults()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

// ApplyDefaults fills optional enum fields left empty.
func (q *QuestionnaireAnswers) ApplyDefaults() {
	if q.FinancialSafetyMonths == "" {
		q.FinancialSafetyMonths = "0"
	}
	if q.PrimaryGoal == "" {
		q.PrimaryGoal = GoalUnderstandReality
	}
}

// Validate checks money values and enum fields. Errors wrap ErrInvalidQuestionnaire.
func (q *QuestionnaireAnswers) Validate() error {
	money := map[string]decimal.Decimal{
		"monthly_income":          q.MonthlyIncome,
		"monthly_living_expenses": q.MonthlyLivingExpenses,
		"monthly_credit_payments": q.MonthlyCreditPayments,
	}
	if q.TotalOutstandingDebt != nil {
		money["total_outstanding_debt"] = *q.TotalOutstandingDebt
	}
	for field, v := range money {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidQuestionnaire, field)
		}
	}

	enums := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"income_stability", q.IncomeStability, incomeStabilities},
		{"credit_load_perception", q.CreditLoadPerception, perceptions},
		{"financial_safety_months", q.FinancialSafetyMonths, safetyMonths},
		{"primary_goal", q.PrimaryGoal, goals},
		{"total_debt_range", q.TotalDebtRange, debtRanges},
	}
	for _, e := range enums {
		if !oneOf(e.value, e.allowed) {
			return fmt.Errorf("%w: %s %q is not one of %v", ErrInvalidQuestionnaire, e.field, e.value, e.allowed)
		}
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
