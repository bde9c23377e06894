package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accepted year range for transaction dates. Anything outside is treated as a
// misparse.
const (
	MinYear = 2000
	MaxYear = 2100
)

// Transaction represents a single bank statement transaction.
// Positive amounts are inflows, negative amounts are outflows.
type Transaction struct {
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Balance     *decimal.Decimal `json:"balance"`
}

// NewTransaction builds a transaction, rejecting dates outside [MinYear, MaxYear].
func NewTransaction(date time.Time, description string, amount decimal.Decimal, balance *decimal.Decimal) (Transaction, bool) {
	if !ValidYear(date) {
		return Transaction{}, false
	}
	return Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Balance:     balance,
	}, true
}

// ValidYear reports whether t falls inside the accepted year range.
func ValidYear(t time.Time) bool {
	y := t.Year()
	return y >= MinYear && y <= MaxYear
}

// IsDebit reports whether the transaction is an outflow.
func (t Transaction) IsDebit() bool { return t.Amount.IsNegative() }

// IsCredit reports whether the transaction is an inflow.
func (t Transaction) IsCredit() bool { return t.Amount.IsPositive() }

// Ledger is the date-ordered list of transactions extracted from one statement.
type Ledger []Transaction

// Income is the sum of positive amounts.
func (l Ledger) Income() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range l {
		if t.IsCredit() {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// Spending is the sum of absolute values of negative amounts.
func (l Ledger) Spending() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range l {
		if t.IsDebit() {
			sum = sum.Sub(t.Amount)
		}
	}
	return sum
}

// Net is the sum of all amounts.
func (l Ledger) Net() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range l {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// Debits returns the outflows in ledger order.
func (l Ledger) Debits() Ledger {
	var out Ledger
	for _, t := range l {
		if t.IsDebit() {
			out = append(out, t)
		}
	}
	return out
}

// BankType is the free-text label of the issuing bank.
type BankType string

const (
	BankKaspi   BankType = "kaspi"
	BankHalyk   BankType = "halyk"
	BankJusan   BankType = "jusan"
	BankForte   BankType = "forte"
	BankFreedom BankType = "freedom"
	BankGeneric BankType = "generic"
)

// DebugLine captures what the ledger builder did with each table row or text line.
type DebugLine struct {
	Page   int    `json:"page"`
	Source string `json:"source"` // "table" or "text"
	Text   string `json:"text"`
	Result string `json:"result"` // "parsed" or "skipped"
}

// StatementInfo holds metadata found in the statement text.
type StatementInfo struct {
	Bank            BankType `json:"bank"`
	AccountNumber   string   `json:"account_number,omitempty"`
	StatementPeriod string   `json:"statement_period,omitempty"`
}
