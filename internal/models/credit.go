package models

import "github.com/shopspring/decimal"

// LoanType classifies a credit statement entry.
type LoanType string

const (
	LoanCash       LoanType = "cash_loan"
	LoanBusiness   LoanType = "business_loan"
	LoanInstalment LoanType = "installment"
	LoanCreditCard LoanType = "credit_card"
	LoanUnknown    LoanType = "unknown"
)

// CreditTransaction is an entry from a credit (loan) statement.
// Positive amounts are disbursements, negative amounts are repayments.
type CreditTransaction struct {
	Transaction
	LoanType         LoanType         `json:"loan_type"`
	RemainingBalance *decimal.Decimal `json:"remaining_balance,omitempty"`
}

// IsIssuance reports whether the entry is a loan disbursement.
func (c CreditTransaction) IsIssuance() bool { return c.Amount.IsPositive() }

// IsRepayment reports whether the entry is a repayment.
func (c CreditTransaction) IsRepayment() bool { return c.Amount.IsNegative() }
