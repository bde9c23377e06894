package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// accountNumberPattern finds a Kazakhstan IBAN (KZ + 2 check digits + 16 chars).
var accountNumberPattern = regexp.MustCompile(`\bKZ\d{2}[A-Z0-9]{16}\b`)

// periodPattern finds "с 01.01.2024 по 31.01.2024" or "from ... to ...".
var periodPattern = regexp.MustCompile(`(?i)(?:с|from)\s+(\d{1,2}[./-]\d{1,2}[./-]\d{2,4})\s+(?:по|to|-)\s+(\d{1,2}[./-]\d{1,2}[./-]\d{2,4})`)

func findAccountNumber(text string) string {
	return accountNumberPattern.FindString(strings.ToUpper(text))
}

// findStatementPeriod returns the period as "YYYY-MM-DD/YYYY-MM-DD".
func findStatementPeriod(text string) string {
	m := periodPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	from, ok := ResolveDate(m[1])
	if !ok {
		return ""
	}
	to, ok := ResolveDate(m[2])
	if !ok {
		return ""
	}
	return from.Format("2006-01-02") + "/" + to.Format("2006-01-02")
}

// StatementMetadata collects bank, account and period from the page text.
// An explicit bank overrides detection.
func StatementMetadata(pages []string, bank models.BankType) models.StatementInfo {
	text := strings.Join(pages, "\n")
	if bank == "" {
		bank = AutoDetect(pages)
	}
	return models.StatementInfo{
		Bank:            bank,
		AccountNumber:   findAccountNumber(text),
		StatementPeriod: findStatementPeriod(text),
	}
}
