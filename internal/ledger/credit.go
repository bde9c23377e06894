package ledger

import (
	"context"
	"regexp"

	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/textmatch"
)

// CreditRules recognise credit-statement entries and classify their loan type.
type CreditRules struct {
	Issuance    []*regexp.Regexp
	Repayment   []*regexp.Regexp
	Installment []*regexp.Regexp
	CreditCard  []*regexp.Regexp
	Business    []*regexp.Regexp
}

// DefaultCreditRules returns the Kaspi-oriented rule set.
func DefaultCreditRules() CreditRules {
	return CreditRules{
		Issuance: textmatch.MustCompileAll(
			`\bкредит\s*(?:наличными|для|на)\b`,
			`\bвыдан\p{L}*\s*кредит`,
			`\bполучен\p{L}*\s*кредит`,
			`\bloan\s*issued\b`,
		),
		Repayment: textmatch.MustCompileAll(
			`\bпогашен\p{L}*\s*кредит`,
			`\bоплат[аы]\s*kaspi\s*кредит`,
			`\bкредит\p{L}*\s*погашен`,
			`\brepayment\b`,
		),
		Installment: textmatch.MustCompileAll(
			`\bрассрочк`,
			`\binstal{1,2}ment\b`,
			`\bkaspi\s*red\b`,
		),
		CreditCard: textmatch.MustCompileAll(
			`\bкредитн\p{L}*\s*карт`,
			`\bcredit\s*card\b`,
			`\bкарт\p{L}*\s*кредит`,
		),
		Business: textmatch.MustCompileAll(
			`\bип\b`,
			`\bбизнес`,
			`\bbusiness\b`,
		),
	}
}

// IsCreditEntry reports whether description names a loan issuance, a
// repayment or an installment purchase.
func (r CreditRules) IsCreditEntry(description string) bool {
	return textmatch.MatchAny(r.Issuance, description) ||
		textmatch.MatchAny(r.Repayment, description) ||
		textmatch.MatchAny(r.Installment, description) ||
		textmatch.MatchAny(r.CreditCard, description)
}

// ClassifyLoanType picks the first matching type in the order credit card,
// installment, business loan, falling back to cash loan.
func (r CreditRules) ClassifyLoanType(description string) models.LoanType {
	switch {
	case textmatch.MatchAny(r.CreditCard, description):
		return models.LoanCreditCard
	case textmatch.MatchAny(r.Installment, description):
		return models.LoanInstalment
	case textmatch.MatchAny(r.Business, description):
		return models.LoanBusiness
	default:
		return models.LoanCash
	}
}

// ExtractCredit extracts the loan entries of a credit statement. It reads the
// document with the same page strategy as Build and keeps only entries whose
// description matches the credit rules.
func (b Builder) ExtractCredit(ctx context.Context, doc Document, rules CreditRules) ([]models.CreditTransaction, error) {
	ctx, span := tracer.Start(ctx, "ledger.ExtractCredit")
	defer span.End()

	ledger, err := b.Build(ctx, doc)
	if err != nil {
		return nil, err
	}

	var out []models.CreditTransaction
	for _, t := range ledger {
		if !rules.IsCreditEntry(t.Description) {
			continue
		}
		out = append(out, models.CreditTransaction{
			Transaction:      t,
			LoanType:         rules.ClassifyLoanType(t.Description),
			RemainingBalance: t.Balance,
		})
	}
	return out, nil
}
