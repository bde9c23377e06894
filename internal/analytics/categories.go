package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Classifier maps a transaction description to a category name.
type Classifier interface {
	Classify(description string) string
}

// CategoryTotal aggregates the transactions of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Income   decimal.Decimal `json:"income"`
	Spending decimal.Decimal `json:"spending"`
	Count    int             `json:"transactions"`
}

// CategoryBreakdown groups the ledger by category, ordered by spending then
// income (both descending) and category name.
func CategoryBreakdown(l models.Ledger, c Classifier) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for _, t := range l {
		cat := c.Classify(t.Description)
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, CategoryTotal{Category: cat})
		}
		switch {
		case t.IsCredit():
			out[i].Income = out[i].Income.Add(t.Amount)
		case t.IsDebit():
			out[i].Spending = out[i].Spending.Sub(t.Amount)
		}
		out[i].Count++
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Spending.Cmp(out[j].Spending); c != 0 {
			return c > 0
		}
		if c := out[i].Income.Cmp(out[j].Income); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// FindCategory returns the breakdown entry for name, if present.
func FindCategory(breakdown []CategoryTotal, name string) (CategoryTotal, bool) {
	for _, c := range breakdown {
		if c.Category == name {
			return c, true
		}
	}
	return CategoryTotal{}, false
}
