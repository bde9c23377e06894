package analytics

import (
	"regexp"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/textmatch"
)

// Warning levels of the credit detector.
const (
	WarningLow    = "low"
	WarningMedium = "medium"
	WarningHigh   = "high"
)

// CreditConfig tunes the credit-load detector.
type CreditConfig struct {
	Patterns      []*regexp.Regexp
	Stems         []string // every pattern match must contain one of these
	HighPercent   float64
	MediumPercent float64
	RecurringMin  int
	TopRecurring  int
	SampleSize    int
}

// DefaultCreditConfig returns the Kaspi credit keywords and thresholds.
func DefaultCreditConfig() CreditConfig {
	return CreditConfig{
		Patterns: textmatch.MustCompileAll(
			`\bкредит\b`, `\bcredit\b`, `\bloan\b`, `\bзайм\b`,
			`\bkaspi\s*кредит\b`, `\bkaspi\s*red\b`, `\bрассрочк`, `\binstallment\b`,
			`\bоплат[аы]\s*kaspi\s*кредит`, `\bпогашен`, `\brepayment\b`,
			`\bкредит\s*для\s*ип\b`, `\bкредит\s*наличными\b`,
		),
		Stems:         []string{"кредит", "credit", "loan", "займ", "kaspi", "рассрочк", "installment", "погашен", "repayment"},
		HighPercent:   40,
		MediumPercent: 25,
		RecurringMin:  2,
		TopRecurring:  5,
		SampleSize:    10,
	}
}

// RecurringPayment is a credit merchant seen more than once.
type RecurringPayment struct {
	Merchant      string          `json:"merchant"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	Frequency     int             `json:"frequency"`
}

// CreditAnalysis is the credit-load detector result.
type CreditAnalysis struct {
	TotalMonthly         decimal.Decimal      `json:"total_monthly"`
	TotalPeriod          decimal.Decimal      `json:"total_period"`
	PercentageOfExpenses float64              `json:"percentage_of_expenses"`
	RecurringPayments    []RecurringPayment   `json:"recurring_payments"`
	CreditTransactions   []models.Transaction `json:"credit_transactions"`
	WarningLevel         string               `json:"warning_level"`
}

// CreditDetector finds loan, installment and repayment outflows. It is safe
// for concurrent use.
type CreditDetector struct {
	cfg       CreditConfig
	prefilter *textmatch.Prefilter
}

// NewCreditDetector builds a detector from cfg.
func NewCreditDetector(cfg CreditConfig) *CreditDetector {
	return &CreditDetector{cfg: cfg, prefilter: textmatch.NewPrefilter(cfg.Stems)}
}

// IsCredit reports whether a description looks like a credit payment.
func (d *CreditDetector) IsCredit(description string) bool {
	if !d.prefilter.MayMatch(description) {
		return false
	}
	return textmatch.MatchAny(d.cfg.Patterns, description)
}

// Detect measures credit payments among the ledger's debits.
func (d *CreditDetector) Detect(l models.Ledger) CreditAnalysis {
	out := CreditAnalysis{
		RecurringPayments:  []RecurringPayment{},
		CreditTransactions: []models.Transaction{},
		WarningLevel:       WarningLow,
	}

	debits := l.Debits()
	var credits models.Ledger
	for _, t := range debits {
		if d.IsCredit(t.Description) {
			credits = append(credits, t)
		}
	}
	if len(credits) == 0 {
		return out
	}

	out.TotalPeriod = credits.Spending()
	months := Summarize(credits, Monthly)
	out.TotalMonthly = out.TotalPeriod.Div(decimal.NewFromInt(int64(len(months))))
	pct := percentOf(out.TotalPeriod, debits.Spending())
	out.PercentageOfExpenses = pct

	type group struct {
		total decimal.Decimal
		count int
	}
	var order []string
	groups := make(map[string]*group)
	for _, t := range credits {
		g, ok := groups[t.Description]
		if !ok {
			g = &group{}
			groups[t.Description] = g
			order = append(order, t.Description)
		}
		g.total = g.total.Sub(t.Amount)
		g.count++
	}
	for _, merchant := range order {
		g := groups[merchant]
		if g.count < d.cfg.RecurringMin {
			continue
		}
		out.RecurringPayments = append(out.RecurringPayments, RecurringPayment{
			Merchant:      merchant,
			MonthlyAmount: g.total.Div(decimal.NewFromInt(int64(g.count))),
			Frequency:     g.count,
		})
	}
	sort.SliceStable(out.RecurringPayments, func(i, j int) bool {
		return out.RecurringPayments[i].MonthlyAmount.GreaterThan(out.RecurringPayments[j].MonthlyAmount)
	})
	if len(out.RecurringPayments) > d.cfg.TopRecurring {
		out.RecurringPayments = out.RecurringPayments[:d.cfg.TopRecurring]
	}

	n := min(len(credits), d.cfg.SampleSize)
	out.CreditTransactions = append(out.CreditTransactions, credits[:n]...)

	switch {
	case pct > d.cfg.HighPercent:
		out.WarningLevel = WarningHigh
	case pct > d.cfg.MediumPercent:
		out.WarningLevel = WarningMedium
	}
	return out
}
