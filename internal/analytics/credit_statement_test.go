package analytics

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func credit(date, description string, amount int64, lt models.LoanType) models.CreditTransaction {
	return models.CreditTransaction{Transaction: txn(date, description, amount), LoanType: lt}
}

func TestAnalyzeCreditStatement(t *testing.T) {
	credits := []models.CreditTransaction{
		credit("2024-01-01", "Кредит наличными", 100000, models.LoanCash),
		credit("2024-01-10", "Погашение кредита", -100000, models.LoanCash),
		credit("2024-01-20", "Кредит наличными", 150000, models.LoanCash),
		credit("2024-03-01", "Рассрочка", 50000, models.LoanInstalment),
	}

	got := AnalyzeCreditStatement(credits, DefaultCreditStatementConfig())

	assert.True(t, dec(300000).Equal(got.TotalLoansIssued))
	assert.True(t, dec(100000).Equal(got.TotalRepayments))
	assert.True(t, dec(200000).Equal(got.EstimatedActiveDebt))
	assert.True(t, dec(200000).Equal(got.NetCreditFlow))
	assert.Equal(t, 3, got.LoanFrequency)
	assert.True(t, got.RefinancingDetected)
	assert.Equal(t, SpiralNone, got.CreditSpiralRisk)
	assert.Equal(t, map[models.LoanType]int{models.LoanCash: 2, models.LoanInstalment: 1}, got.LoanTypes)

	require.Len(t, got.Loans, 3)
	require.Len(t, got.Repayments, 1)
	assert.True(t, dec(100000).Equal(got.Repayments[0].Amount))
}

func TestAnalyzeCreditStatementRefinancingWindow(t *testing.T) {
	tests := []struct {
		name     string
		credits  []models.CreditTransaction
		expected bool
	}{
		{
			name: "repayment between loans 30 days apart",
			credits: []models.CreditTransaction{
				credit("2024-01-01", "loan", 1000, ""),
				credit("2024-01-15", "repayment", -500, ""),
				credit("2024-01-31", "loan", 1000, ""),
			},
			expected: true,
		},
		{
			name: "loans 31 days apart",
			credits: []models.CreditTransaction{
				credit("2024-01-01", "loan", 1000, ""),
				credit("2024-01-15", "repayment", -500, ""),
				credit("2024-02-01", "loan", 1000, ""),
			},
			expected: false,
		},
		{
			name: "repayment on the day of the loan",
			credits: []models.CreditTransaction{
				credit("2024-01-01", "loan", 1000, ""),
				credit("2024-01-01", "repayment", -500, ""),
				credit("2024-01-20", "loan", 1000, ""),
			},
			expected: false,
		},
		{
			name: "no repayment",
			credits: []models.CreditTransaction{
				credit("2024-01-01", "loan", 1000, ""),
				credit("2024-01-02", "loan", 1000, ""),
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeCreditStatement(tt.credits, DefaultCreditStatementConfig())
			assert.Equal(t, tt.expected, got.RefinancingDetected)
		})
	}
}

func TestAnalyzeCreditStatementSpiral(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []int64
		expected string
	}{
		{"three loans", []int64{100, 200, 300}, SpiralNone},
		{"four rising loans", []int64{100, 100, 200, 300}, SpiralHigh},
		{"four mixed loans", []int64{300, 100, 200, 400}, SpiralMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var credits []models.CreditTransaction
			for i, a := range tt.amounts {
				credits = append(credits, credit(fmt.Sprintf("2024-%02d-01", i+1), "loan", a, models.LoanCash))
			}
			assert.Equal(t, tt.expected, AnalyzeCreditStatement(credits, DefaultCreditStatementConfig()).CreditSpiralRisk)
		})
	}
}

func TestAnalyzeCreditStatementEmpty(t *testing.T) {
	got := AnalyzeCreditStatement(nil, DefaultCreditStatementConfig())
	assert.True(t, got.EstimatedActiveDebt.IsZero())
	assert.Equal(t, SpiralNone, got.CreditSpiralRisk)
	assert.False(t, got.RefinancingDetected)
	assert.Empty(t, got.LoanTypes)
}

func TestAnalyzeCreditStatementDebtFloor(t *testing.T) {
	got := AnalyzeCreditStatement([]models.CreditTransaction{
		credit("2024-01-01", "loan", 1000, ""),
		credit("2024-01-05", "repayment", -3000, ""),
	}, DefaultCreditStatementConfig())

	assert.True(t, got.EstimatedActiveDebt.IsZero())
	assert.True(t, dec(-2000).Equal(got.NetCreditFlow))
	assert.Equal(t, 1, got.LoanTypes[models.LoanUnknown])
}

func TestRealIncome(t *testing.T) {
	l := models.Ledger{
		txn("2024-01-01", "Зарплата", 300000),
		txn("2024-01-02", "Кредит наличными", 100000),
		txn("2024-01-03", "Business loan", 50000),
		txn("2024-01-04", "Кредитная карта cashback", 1000),
		txn("2024-01-05", "Покупка", -20000),
	}

	got := RealIncome(l, DefaultRealIncomeConfig())
	assert.True(t, dec(451000).Equal(got.TotalIncome))
	assert.True(t, dec(150000).Equal(got.CreditInflows))
	assert.True(t, dec(301000).Equal(got.RealIncome))
	assert.InDelta(t, 33.26, got.CreditDependencyRatio, 0.01)

	empty := RealIncome(nil, DefaultRealIncomeConfig())
	assert.Equal(t, 0.0, empty.CreditDependencyRatio)
}

func TestCompareDeclared(t *testing.T) {
	q := &models.QuestionnaireAnswers{
		MonthlyIncome:         decimal.NewFromInt(200000),
		MonthlyLivingExpenses: decimal.NewFromInt(100000),
	}
	l := models.Ledger{
		txn("2024-01-05", "salary", 250000),
		txn("2024-01-10", "shop", -150000),
		txn("2024-02-05", "salary", 250000),
		txn("2024-02-10", "shop", -150000),
	}

	got := CompareDeclared(l, q, DefaultRealityConfig())

	assert.True(t, dec(250000).Equal(got.Income.Detected))
	assert.True(t, dec(50000).Equal(got.Income.Difference))
	assert.InDelta(t, 25.0, got.Income.DifferencePercent, 1e-9)
	assert.True(t, dec(150000).Equal(got.Expenses.Detected))
	assert.InDelta(t, 50.0, got.Expenses.DifferencePercent, 1e-9)

	require.Len(t, got.Discrepancies, 2)
	assert.Equal(t, IncomeOverestimate, got.Discrepancies[0].Type)
	assert.Equal(t, SeverityMedium, got.Discrepancies[0].Severity)
	assert.Equal(t, ExpenseUnderestimate, got.Discrepancies[1].Type)
	assert.Equal(t, SeverityHigh, got.Discrepancies[1].Severity)
	assert.Len(t, got.Warnings, 1)
}

func TestCompareDeclaredWithinTolerance(t *testing.T) {
	q := &models.QuestionnaireAnswers{
		MonthlyIncome:         decimal.NewFromInt(250000),
		MonthlyLivingExpenses: decimal.NewFromInt(200000),
	}
	l := models.Ledger{
		txn("2024-01-05", "salary", 300000),
		txn("2024-01-10", "shop", -150000),
	}

	got := CompareDeclared(l, q, DefaultRealityConfig())

	// income +20% is not above the tolerance, expenses -25% is
	require.Len(t, got.Discrepancies, 1)
	assert.Equal(t, ExpenseOverestimate, got.Discrepancies[0].Type)
	assert.Equal(t, SeverityLow, got.Discrepancies[0].Severity)
	assert.Empty(t, got.Warnings)
}

func TestCompareDeclaredEmpty(t *testing.T) {
	q := &models.QuestionnaireAnswers{MonthlyIncome: decimal.NewFromInt(1)}
	got := CompareDeclared(nil, q, DefaultRealityConfig())
	assert.Empty(t, got.Discrepancies)
	assert.True(t, got.Income.Declared.IsZero())
}
