package analytics

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/textmatch"
)

// RealIncomeConfig lists the patterns of inflows that are borrowed money.
type RealIncomeConfig struct {
	CreditInflowPatterns []*regexp.Regexp
}

// DefaultRealIncomeConfig returns the RU/EN loan keywords.
func DefaultRealIncomeConfig() RealIncomeConfig {
	return RealIncomeConfig{
		CreditInflowPatterns: textmatch.MustCompileAll(
			`\bкредит\b`,
			`\bloan\b`,
			`\bзайм\b`,
			`\bкредит\s*наличными\b`,
			`\bкредит\s*для\s*ип\b`,
		),
	}
}

// RealIncomeAnalysis separates earned income from loan disbursements.
type RealIncomeAnalysis struct {
	TotalIncome           decimal.Decimal `json:"total_income"`
	CreditInflows         decimal.Decimal `json:"credit_inflows"`
	RealIncome            decimal.Decimal `json:"real_income"`
	CreditDependencyRatio float64         `json:"credit_dependency_ratio"`
}

// RealIncome subtracts credit inflows from income. The dependency ratio is
// the credit share of income in percent.
func RealIncome(l models.Ledger, cfg RealIncomeConfig) RealIncomeAnalysis {
	var out RealIncomeAnalysis
	for _, t := range l {
		if !t.IsCredit() {
			continue
		}
		out.TotalIncome = out.TotalIncome.Add(t.Amount)
		if textmatch.MatchAny(cfg.CreditInflowPatterns, t.Description) {
			out.CreditInflows = out.CreditInflows.Add(t.Amount)
		}
	}
	out.RealIncome = out.TotalIncome.Sub(out.CreditInflows)
	out.CreditDependencyRatio = percentOf(out.CreditInflows, out.TotalIncome)
	return out
}
