package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func TestClassifyLoanType(t *testing.T) {
	rules := DefaultCreditRules()

	tests := []struct {
		description string
		expected    models.LoanType
	}{
		{"Кредит наличными", models.LoanCash},
		{"Кредит для ИП", models.LoanBusiness},
		{"Business loan issued", models.LoanBusiness},
		{"Покупка в рассрочку", models.LoanInstalment},
		{"Kaspi Red Magnum", models.LoanInstalment},
		{"Погашение по кредитной карте", models.LoanCreditCard},
		{"Credit card repayment", models.LoanCreditCard},
		{"Loan issued", models.LoanCash},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.expected, rules.ClassifyLoanType(tt.description))
		})
	}
}

func TestIsCreditEntry(t *testing.T) {
	rules := DefaultCreditRules()

	tests := []struct {
		description string
		expected    bool
	}{
		{"Выдан кредит", true},
		{"Погашение кредита", true},
		{"Оплата Kaspi Кредит", true},
		{"Loan repayment", true},
		{"Рассрочка 0-0-12", true},
		{"Покупка Magnum", false},
		{"Перевод Айгуль", false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.expected, rules.IsCreditEntry(tt.description))
		})
	}
}

func TestExtractCredit(t *testing.T) {
	doc := StaticDocument{{
		Tables: []Table{{
			{"10.01.2024", "Кредит наличными", "500 000,00", "+ 500 000,00"},
			{"10.02.2024", "Погашение кредита", "460 000,00", "- 40 000,00"},
			{"11.02.2024", "Покупка Magnum", "- 5 000,00"},
		}},
	}}

	credits, err := Builder{}.ExtractCredit(context.Background(), doc, DefaultCreditRules())
	require.NoError(t, err)

	require.Len(t, credits, 2)
	assert.True(t, credits[0].IsIssuance())
	assert.Equal(t, models.LoanCash, credits[0].LoanType)
	require.NotNil(t, credits[0].RemainingBalance)
	assert.Equal(t, "500000", credits[0].RemainingBalance.String())

	assert.True(t, credits[1].IsRepayment())
	assert.Equal(t, "-40000", credits[1].Amount.String())
}
