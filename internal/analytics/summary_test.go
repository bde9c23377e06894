package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func TestBucketKey(t *testing.T) {
	tests := []struct {
		date      string
		period    Period
		wantKey   string
		wantStart string
	}{
		{"2024-01-17", Daily, "2024-01-17", "2024-01-17"},
		{"2024-01-17", Weekly, "2024-W03", "2024-01-15"},
		{"2024-01-21", Weekly, "2024-W03", "2024-01-15"},
		{"2024-01-22", Weekly, "2024-W04", "2024-01-22"},
		{"2024-12-30", Weekly, "2025-W01", "2024-12-30"},
		{"2024-02-29", Monthly, "2024-02", "2024-02-01"},
	}

	for _, tt := range tests {
		t.Run(tt.period.String()+" "+tt.date, func(t *testing.T) {
			key, start := BucketKey(day(tt.date), tt.period)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantStart, start.Format("2006-01-02"))
		})
	}
}

func TestSummarizeMonthly(t *testing.T) {
	l := models.Ledger{
		txn("2024-01-05", "salary", 1000),
		txn("2024-01-06", "shop", -300),
		txn("2024-02-01", "shop", -200),
		txn("2024-02-02", "zero", 0),
	}

	buckets := Summarize(l, Monthly)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2024-01", buckets[0].Key)
	assert.True(t, dec(1000).Equal(buckets[0].Income))
	assert.True(t, dec(300).Equal(buckets[0].Spending))
	assert.True(t, dec(700).Equal(buckets[0].Net))
	assert.Equal(t, 2, buckets[0].Count)

	assert.Equal(t, "2024-02", buckets[1].Key)
	assert.True(t, dec(0).Equal(buckets[1].Income))
	assert.Equal(t, 2, buckets[1].Count)
}

func TestSummariesConserveNet(t *testing.T) {
	l := models.Ledger{
		txn("2024-01-30", "a", 500),
		txn("2024-01-31", "b", -120),
		txn("2024-02-01", "c", -80),
		txn("2024-02-05", "d", 1000),
		txn("2024-03-11", "e", -999),
	}

	for _, p := range []Period{Daily, Weekly, Monthly} {
		t.Run(p.String(), func(t *testing.T) {
			sum := dec(0)
			count := 0
			for _, b := range Summarize(l, p) {
				sum = sum.Add(b.Net)
				count += b.Count
				assert.True(t, b.Income.Sub(b.Spending).Equal(b.Net), "bucket %s", b.Key)
			}
			assert.True(t, l.Net().Equal(sum))
			assert.Equal(t, len(l), count)
		})
	}
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(scenarioLedger())
	assert.True(t, dec(300000).Equal(totals.Income))
	assert.True(t, dec(70000).Equal(totals.Spending))
	assert.True(t, dec(230000).Equal(totals.Net))
	assert.Equal(t, 1, totals.Months)

	empty := ComputeTotals(nil)
	assert.True(t, empty.Net.IsZero())
	assert.Equal(t, 0, empty.Months)
	assert.True(t, dec(1).Equal(empty.MonthlyDivisor()))
}

func TestBalances(t *testing.T) {
	l := models.Ledger{
		txn("2024-01-01", "no balance", 10),
		withBalance(txn("2024-01-02", "first", -5), 995),
		txn("2024-01-03", "gap", 10),
		withBalance(txn("2024-01-04", "last", 100), 1105),
	}

	b := Balances(l)
	require.NotNil(t, b.Opening)
	require.NotNil(t, b.Closing)
	assert.True(t, dec(995).Equal(*b.Opening))
	assert.True(t, dec(1105).Equal(*b.Closing))

	none := Balances(models.Ledger{txn("2024-01-01", "x", 1)})
	assert.Nil(t, none.Opening)
	assert.Nil(t, none.Closing)
}

func TestDailyTrend(t *testing.T) {
	l := models.Ledger{
		txn("2024-01-01", "a", 100),
		txn("2024-01-01", "b", -40),
		txn("2024-01-03", "c", -10),
	}

	trend := DailyTrend(l)
	require.Len(t, trend, 2)
	assert.Equal(t, "2024-01-01", trend[0].Day)
	assert.True(t, dec(60).Equal(trend[0].Net))
	assert.Equal(t, 2, trend[0].Count)
	assert.Equal(t, "2024-01-03", trend[1].Day)
}

func TestCategoryBreakdown(t *testing.T) {
	c := stubClassifier{"Magnum": "groceries", "Cafe": "restaurants", "Salary": "salary", "Small": "groceries"}
	l := models.Ledger{
		txn("2024-01-01", "Salary", 500),
		txn("2024-01-02", "Magnum", -100),
		txn("2024-01-03", "Small", -50),
		txn("2024-01-04", "Cafe", -150),
		txn("2024-01-05", "Unknown", -10),
	}

	got := CategoryBreakdown(l, c)
	require.Len(t, got, 4)
	assert.Equal(t, "groceries", got[0].Category)
	assert.True(t, dec(150).Equal(got[0].Spending))
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "restaurants", got[1].Category)
	assert.Equal(t, "other", got[2].Category)
	assert.Equal(t, "salary", got[3].Category)
	assert.True(t, dec(500).Equal(got[3].Income))

	restaurants, ok := FindCategory(got, "restaurants")
	assert.True(t, ok)
	assert.Equal(t, 1, restaurants.Count)
	_, ok = FindCategory(got, "fuel")
	assert.False(t, ok)
}
