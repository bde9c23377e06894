package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// LeakConfig tunes the money-leak detector.
type LeakConfig struct {
	SmallThreshold decimal.Decimal // largest debit counted as small
	MinCount       int
	MinTotal       decimal.Decimal
	TopN           int
}

// DefaultLeakConfig returns the KZT thresholds.
func DefaultLeakConfig() LeakConfig {
	return LeakConfig{
		SmallThreshold: decimal.NewFromInt(5000),
		MinCount:       3,
		MinTotal:       decimal.NewFromInt(10000),
		TopN:           10,
	}
}

// LeakSource is a merchant with frequent small spending.
type LeakSource struct {
	Merchant string          `json:"merchant"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Avg      decimal.Decimal `json:"avg"`
}

// LeakAnalysis is the money-leak detector result.
type LeakAnalysis struct {
	TotalMonthly decimal.Decimal `json:"total_monthly"`
	Sources      []LeakSource    `json:"leak_sources"`
	Insight      string          `json:"insight"`
}

// Top returns the largest leak source, if any.
func (a LeakAnalysis) Top() (LeakSource, bool) {
	if len(a.Sources) == 0 {
		return LeakSource{}, false
	}
	return a.Sources[0], true
}

// DetectLeaks groups small debits by exact description and keeps the groups
// that are both frequent and large in total. TotalMonthly is the mean monthly
// sum of all small debits, not only the kept groups.
func DetectLeaks(l models.Ledger, cfg LeakConfig) LeakAnalysis {
	out := LeakAnalysis{Sources: []LeakSource{}}

	var small models.Ledger
	for _, t := range l.Debits() {
		if t.Amount.Abs().LessThanOrEqual(cfg.SmallThreshold) {
			small = append(small, t)
		}
	}
	if len(small) == 0 {
		return out
	}

	var order []string
	groups := make(map[string]*LeakSource)
	for _, t := range small {
		g, ok := groups[t.Description]
		if !ok {
			g = &LeakSource{Merchant: t.Description}
			groups[t.Description] = g
			order = append(order, t.Description)
		}
		g.Total = g.Total.Sub(t.Amount)
		g.Count++
	}
	for _, merchant := range order {
		g := groups[merchant]
		if g.Count < cfg.MinCount || g.Total.LessThan(cfg.MinTotal) {
			continue
		}
		g.Avg = g.Total.Div(decimal.NewFromInt(int64(g.Count)))
		out.Sources = append(out.Sources, *g)
	}
	sort.SliceStable(out.Sources, func(i, j int) bool {
		return out.Sources[i].Total.GreaterThan(out.Sources[j].Total)
	})
	if cfg.TopN > 0 && len(out.Sources) > cfg.TopN {
		out.Sources = out.Sources[:cfg.TopN]
	}

	months := Summarize(small, Monthly)
	out.TotalMonthly = small.Spending().Div(decimal.NewFromInt(int64(len(months))))

	if n := len(out.Sources); n > 0 {
		out.Insight = fmt.Sprintf("Found %d sources of unnoticed spending", n)
	}
	return out
}
