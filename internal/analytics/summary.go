// Package analytics aggregates a ledger into periods and categories and runs
// the heuristic detectors over it.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Period selects the bucket size of Summarize.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	}
	return fmt.Sprintf("period(%d)", int(p))
}

// Bucket aggregates the transactions of one period.
type Bucket struct {
	Key      string          `json:"period"`
	Start    time.Time       `json:"start"`
	Income   decimal.Decimal `json:"income"`
	Spending decimal.Decimal `json:"spending"`
	Net      decimal.Decimal `json:"net"`
	Count    int             `json:"transactions"`
}

func (b *Bucket) add(t models.Transaction) {
	switch {
	case t.IsCredit():
		b.Income = b.Income.Add(t.Amount)
	case t.IsDebit():
		b.Spending = b.Spending.Sub(t.Amount)
	}
	b.Net = b.Net.Add(t.Amount)
	b.Count++
}

// BucketKey returns the label and first day of the period containing t.
// Weeks are ISO weeks starting on Monday, labelled "2024-W03".
func BucketKey(t time.Time, p Period) (string, time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case Weekly:
		year, week := day.ISOWeek()
		offset := (int(day.Weekday()) + 6) % 7
		return fmt.Sprintf("%04d-W%02d", year, week), day.AddDate(0, 0, -offset)
	case Monthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01"), start
	default:
		return day.Format("2006-01-02"), day
	}
}

// Summarize buckets the ledger by period. Buckets are ordered by key.
func Summarize(l models.Ledger, p Period) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, t := range l {
		key, start := BucketKey(t.Date, p)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key, Start: start})
		}
		buckets[i].add(t)
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// Totals are the whole-ledger sums.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Spending decimal.Decimal `json:"spending"`
	Net      decimal.Decimal `json:"net"`
	Months   int             `json:"months"`
}

// MonthlyDivisor is the number of observed months, at least 1.
func (t Totals) MonthlyDivisor() decimal.Decimal {
	return decimal.NewFromInt(int64(max(1, t.Months)))
}

// ComputeTotals sums the ledger and counts its calendar months.
func ComputeTotals(l models.Ledger) Totals {
	return Totals{
		Income:   l.Income(),
		Spending: l.Spending(),
		Net:      l.Net(),
		Months:   len(Summarize(l, Monthly)),
	}
}

// BalanceSummary holds the first and last reported running balance.
type BalanceSummary struct {
	Opening *decimal.Decimal `json:"opening"`
	Closing *decimal.Decimal `json:"closing"`
}

// Balances returns the first and last non-missing balance in ledger order,
// regardless of amount sign.
func Balances(l models.Ledger) BalanceSummary {
	var out BalanceSummary
	for _, t := range l {
		if t.Balance == nil {
			continue
		}
		if out.Opening == nil {
			out.Opening = t.Balance
		}
		out.Closing = t.Balance
	}
	return out
}

// DailyPoint is one day of the net-flow trend.
type DailyPoint struct {
	Day   string          `json:"day"`
	Net   decimal.Decimal `json:"net"`
	Count int             `json:"transactions"`
}

// DailyTrend returns the per-day net and transaction count.
func DailyTrend(l models.Ledger) []DailyPoint {
	days := Summarize(l, Daily)
	out := make([]DailyPoint, 0, len(days))
	for _, d := range days {
		out = append(out, DailyPoint{Day: d.Key, Net: d.Net, Count: d.Count})
	}
	return out
}

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}
