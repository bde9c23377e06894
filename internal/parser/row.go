package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// emptyDescription is used when a row or line carries no descriptive text.
const emptyDescription = "N/A"

// ExtractRow turns one table row into a transaction.
//
// The date is the first cell that resolves as a date. Scanning right to left
// (skipping the date cell), the first amount is the transaction amount and the
// next one the running balance. Cells that are neither dates nor amounts form
// the description.
func ExtractRow(cells []string) (models.Transaction, bool) {
	clean := make([]string, 0, len(cells))
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		return models.Transaction{}, false
	}

	dateIdx := -1
	var date time.Time
	for i, c := range clean {
		if d, ok := ResolveDate(c); ok {
			date, dateIdx = d, i
			break
		}
	}
	if dateIdx < 0 {
		return models.Transaction{}, false
	}

	var (
		amount     decimal.Decimal
		haveAmount bool
		balance    *decimal.Decimal
	)
	for i := len(clean) - 1; i >= 0; i-- {
		if i == dateIdx {
			continue
		}
		v, ok := ResolveAmount(clean[i])
		if !ok {
			continue
		}
		if !haveAmount {
			amount, haveAmount = v, true
			continue
		}
		b := v
		balance = &b
		break
	}
	if !haveAmount {
		return models.Transaction{}, false
	}

	var parts []string
	for i, c := range clean {
		if i == dateIdx {
			continue
		}
		if _, ok := ResolveDate(c); ok {
			continue
		}
		if _, ok := ResolveAmount(c); ok {
			continue
		}
		parts = append(parts, c)
	}
	description := strings.TrimSpace(strings.Join(parts, " "))
	if description == "" {
		description = emptyDescription
	}

	return models.NewTransaction(date, description, amount, balance)
}
