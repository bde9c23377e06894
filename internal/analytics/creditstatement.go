package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Credit spiral risk levels.
const (
	SpiralNone   = "none"
	SpiralMedium = "medium"
	SpiralHigh   = "high"
)

// CreditStatementConfig tunes the credit-statement analysis.
type CreditStatementConfig struct {
	RefinanceWindow time.Duration
	SpiralMinLoans  int
}

// DefaultCreditStatementConfig returns a 30-day refinancing window and a
// four-loan spiral threshold.
func DefaultCreditStatementConfig() CreditStatementConfig {
	return CreditStatementConfig{
		RefinanceWindow: 30 * 24 * time.Hour,
		SpiralMinLoans:  4,
	}
}

// CreditEntry is a loan or repayment listed in the analysis. Repayment
// amounts are positive.
type CreditEntry struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	LoanType    models.LoanType `json:"loan_type,omitempty"`
}

// CreditStatementAnalysis describes debt structure and borrowing behavior.
type CreditStatementAnalysis struct {
	TotalLoansIssued    decimal.Decimal         `json:"total_loans_issued"`
	TotalRepayments     decimal.Decimal         `json:"total_repayments"`
	EstimatedActiveDebt decimal.Decimal         `json:"estimated_active_debt"`
	NetCreditFlow       decimal.Decimal         `json:"net_credit_flow"`
	LoanFrequency       int                     `json:"loan_frequency"`
	RefinancingDetected bool                    `json:"refinancing_detected"`
	CreditSpiralRisk    string                  `json:"credit_spiral_risk"`
	LoanTypes           map[models.LoanType]int `json:"loan_types"`
	Loans               []CreditEntry           `json:"loans"`
	Repayments          []CreditEntry           `json:"repayments"`
}

// AnalyzeCreditStatement summarises loan issuances and repayments.
//
// Refinancing is a pair of consecutive issuances at most RefinanceWindow apart
// with a repayment strictly between them. A spiral needs SpiralMinLoans
// issuances; non-decreasing amounts make it high, otherwise medium.
func AnalyzeCreditStatement(credits []models.CreditTransaction, cfg CreditStatementConfig) CreditStatementAnalysis {
	out := CreditStatementAnalysis{
		CreditSpiralRisk: SpiralNone,
		LoanTypes:        map[models.LoanType]int{},
		Loans:            []CreditEntry{},
		Repayments:       []CreditEntry{},
	}

	var loans, repayments []models.CreditTransaction
	for _, c := range credits {
		switch {
		case c.IsIssuance():
			loans = append(loans, c)
			out.TotalLoansIssued = out.TotalLoansIssued.Add(c.Amount)
		case c.IsRepayment():
			repayments = append(repayments, c)
			out.TotalRepayments = out.TotalRepayments.Sub(c.Amount)
		}
	}

	out.NetCreditFlow = out.TotalLoansIssued.Sub(out.TotalRepayments)
	out.EstimatedActiveDebt = decimal.Max(decimal.Zero, out.NetCreditFlow)
	out.LoanFrequency = len(loans)

	for i := 0; i+1 < len(loans) && !out.RefinancingDetected; i++ {
		first, next := loans[i].Date, loans[i+1].Date
		if next.Sub(first) > cfg.RefinanceWindow {
			continue
		}
		for _, r := range repayments {
			if r.Date.After(first) && r.Date.Before(next) {
				out.RefinancingDetected = true
				break
			}
		}
	}

	if len(loans) >= cfg.SpiralMinLoans {
		out.CreditSpiralRisk = SpiralHigh
		for i := 0; i+1 < len(loans); i++ {
			if loans[i].Amount.GreaterThan(loans[i+1].Amount) {
				out.CreditSpiralRisk = SpiralMedium
				break
			}
		}
	}

	for _, c := range loans {
		lt := c.LoanType
		if lt == "" {
			lt = models.LoanUnknown
		}
		out.LoanTypes[lt]++
		out.Loans = append(out.Loans, CreditEntry{Date: c.Date, Description: c.Description, Amount: c.Amount, LoanType: lt})
	}
	for _, c := range repayments {
		out.Repayments = append(out.Repayments, CreditEntry{Date: c.Date, Description: c.Description, Amount: c.Amount.Neg()})
	}
	return out
}
