package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		expected string
	}{
		{"usd grouping", "1234.56", "USD", "$1,234.56"},
		{"usd lower case code", "10", "usd", "$10.00"},
		{"usd negative", "-5.5", "USD", "-$5.50"},
		{"usd rounds half up", "0.005", "USD", "$0.01"},
		{"unknown code", "1234.5", "XYZ", "1234.50 XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestFormatDefaultCurrency(t *testing.T) {
	assert.Equal(t, Format(decimal.NewFromInt(5000), "KZT"), Format(decimal.NewFromInt(5000), ""))
	assert.Contains(t, Format(decimal.NewFromInt(5000), "KZT"), "5")
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("kzt"))
	assert.True(t, Known("EUR"))
	assert.False(t, Known("XYZ"))
}
