package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func txn(date, description string, amount int64) models.Transaction {
	return models.Transaction{Date: day(date), Description: description, Amount: decimal.NewFromInt(amount)}
}

func withBalance(t models.Transaction, balance int64) models.Transaction {
	b := decimal.NewFromInt(balance)
	t.Balance = &b
	return t
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type stubClassifier map[string]string

func (s stubClassifier) Classify(description string) string {
	if c, ok := s[description]; ok {
		return c
	}
	return "other"
}

// scenarioLedger is one month with a salary, four cafe visits and a loan payment.
func scenarioLedger() models.Ledger {
	return models.Ledger{
		txn("2024-03-01", "salary", 300000),
		txn("2024-03-03", "cafe", -5000),
		txn("2024-03-07", "cafe", -5000),
		txn("2024-03-12", "cafe", -5000),
		txn("2024-03-20", "cafe", -5000),
		txn("2024-03-25", "kaspi кредит", -50000),
	}
}
