package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Anomaly reasons.
const (
	ReasonLargeDebit = "large_debit"
	ReasonTopSpend   = "top_spend"
)

// DefaultAnomalyCount is how many debits DetectAnomalies returns.
const DefaultAnomalyCount = 10

var largeDebitFactor = decimal.NewFromInt(4)

// Anomaly is one of the largest debits of the ledger.
type Anomaly struct {
	models.Transaction
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// DetectAnomalies returns the topN largest debits. A debit of at least four
// times the median debit is labelled large_debit, the rest top_spend. With a
// zero median nothing is large.
func DetectAnomalies(l models.Ledger, c Classifier, topN int) []Anomaly {
	debits := l.Debits()
	if len(debits) == 0 {
		return []Anomaly{}
	}

	sizes := make([]decimal.Decimal, len(debits))
	for i, t := range debits {
		sizes[i] = t.Amount.Abs()
	}
	med := median(sizes)
	threshold, bounded := med.Mul(largeDebitFactor), med.IsPositive()

	sorted := make(models.Ledger, len(debits))
	copy(sorted, debits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.Abs().GreaterThan(sorted[j].Amount.Abs())
	})
	if topN > 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}

	out := make([]Anomaly, 0, len(sorted))
	for _, t := range sorted {
		reason := ReasonTopSpend
		if bounded && t.Amount.Abs().GreaterThanOrEqual(threshold) {
			reason = ReasonLargeDebit
		}
		out = append(out, Anomaly{Transaction: t, Category: c.Classify(t.Description), Reason: reason})
	}
	return out
}

func median(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	s := make([]decimal.Decimal, len(values))
	copy(s, values)
	sort.Slice(s, func(i, j int) bool { return s[i].LessThan(s[j]) })
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return s[mid-1].Add(s[mid]).Div(decimal.NewFromInt(2))
}
