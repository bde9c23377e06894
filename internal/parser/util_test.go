package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func TestFindAccountNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"IBAN: KZ12722C000012345678", "KZ12722C000012345678"},
		{"Счет kz12722c000012345678 KZT", "KZ12722C000012345678"},
		{"no account here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, findAccountNumber(tt.input))
		})
	}
}

func TestFindStatementPeriod(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Выписка за период с 01.01.2024 по 31.01.2024", "2024-01-01/2024-01-31"},
		{"Statement from 01/02/24 to 29/02/24", "2024-02-01/2024-02-29"},
		{"no period", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, findStatementPeriod(tt.input))
		})
	}
}

func TestStatementMetadata(t *testing.T) {
	pages := []string{"Kaspi Gold\nIBAN KZ12722C000012345678", "с 01.01.2024 по 31.01.2024"}

	info := StatementMetadata(pages, "")
	assert.Equal(t, models.BankKaspi, info.Bank)
	assert.Equal(t, "KZ12722C000012345678", info.AccountNumber)
	assert.Equal(t, "2024-01-01/2024-01-31", info.StatementPeriod)

	info = StatementMetadata(pages, models.BankHalyk)
	assert.Equal(t, models.BankHalyk, info.Bank)
}
