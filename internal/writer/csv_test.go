package writer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

type stubClassifier map[string]string

func (s stubClassifier) Classify(description string) string {
	if c, ok := s[description]; ok {
		return c
	}
	return "other"
}

func sampleLedger() models.Ledger {
	balance := decimal.RequireFromString("112000")
	return models.Ledger{
		{Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Description: "Покупка Magnum", Amount: decimal.RequireFromString("-5000.5"), Balance: &balance},
		{Date: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), Description: "Зарплата", Amount: decimal.NewFromInt(300000)},
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Description: "Покупка Magnum", Amount: decimal.NewFromInt(-2000)},
	}
}

var sampleInfo = models.StatementInfo{
	Bank:            models.BankKaspi,
	AccountNumber:   "KZ12722S000012345678",
	StatementPeriod: "2024-01-01/2024-02-29",
}

var sampleClassifier = stubClassifier{"Покупка Magnum": "groceries", "Зарплата": "salary"}

func TestCSVWriterWrite(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true, Classifier: sampleClassifier}
	require.NoError(t, w.Write(&buf, sampleInfo, sampleLedger()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// 3 metadata lines + 1 header + 3 transactions
	require.Len(t, lines, 7)
	assert.Equal(t, "# Bank,kaspi", lines[0])
	assert.Equal(t, "# Statement Period,2024-01-01/2024-02-29", lines[2])
	assert.Equal(t, "Date,Description,Category,Amount,Balance", lines[3])
	assert.Equal(t, "2024-01-15,Покупка Magnum,groceries,-5000.50,112000.00", lines[4])
	assert.Equal(t, "2024-01-16,Зарплата,salary,300000.00,", lines[5])
}

func TestCSVWriterWithoutHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, sampleInfo, sampleLedger()[:1]))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Description,Category,Amount,Balance", lines[0])
	assert.Equal(t, "2024-01-15,Покупка Magnum,,-5000.50,112000.00", lines[1])
}

func TestCSVWriterSkipsEmptyMetadata(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	require.NoError(t, w.Write(&buf, models.StatementInfo{Bank: models.BankGeneric}, nil))

	assert.Equal(t, "# Bank,generic\nDate,Description,Category,Amount,Balance\n", buf.String())
}
