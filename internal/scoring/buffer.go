package scoring

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Safety buffer statuses.
const (
	BufferNone       = "no_buffer"
	BufferCritical   = "critical"
	BufferWeak       = "weak"
	BufferAcceptable = "acceptable"
	BufferSafe       = "safe"
)

// SafetyBufferResult is how long the closing balance covers average spending.
type SafetyBufferResult struct {
	Months          float64          `json:"months"`
	Status          string           `json:"status"`
	StatusColor     string           `json:"status_color"`
	Explanation     string           `json:"explanation"`
	MonthlyExpenses decimal.Decimal  `json:"monthly_expenses"`
	BufferAmount    *decimal.Decimal `json:"buffer_amount,omitempty"`
}

// SafetyBuffer divides the closing balance by average monthly spending over
// the observed months. A missing or negative balance means no buffer.
func SafetyBuffer(spending decimal.Decimal, closing *decimal.Decimal, months int) SafetyBufferResult {
	monthly := spending.Div(decimal.NewFromInt(int64(max(1, months))))

	if closing == nil || closing.IsNegative() {
		return SafetyBufferResult{
			Status:          BufferNone,
			StatusColor:     ColorNegative,
			Explanation:     "You have no safety buffer. Losing your income would put you in a difficult position right away.",
			MonthlyExpenses: monthly,
		}
	}

	var covered float64
	if monthly.IsPositive() {
		covered = closing.Div(monthly).InexactFloat64()
	}

	out := SafetyBufferResult{
		Months:          math.Round(covered*10) / 10,
		MonthlyExpenses: monthly,
		BufferAmount:    closing,
	}
	switch {
	case covered >= 6:
		out.Status, out.StatusColor = BufferSafe, ColorPositive
		out.Explanation = fmt.Sprintf("Your buffer covers %.1f months of expenses. That is a strong level of financial safety.", covered)
	case covered >= 3:
		out.Status, out.StatusColor = BufferAcceptable, ColorPositive
		out.Explanation = fmt.Sprintf("Your buffer covers %.1f months of expenses. A good level, consider growing it to 6 months.", covered)
	case covered >= 1:
		out.Status, out.StatusColor = BufferWeak, ColorWarning
		out.Explanation = fmt.Sprintf("Your buffer covers only %.1f months of expenses. Aim for at least 3 months.", covered)
	default:
		out.Status, out.StatusColor = BufferCritical, ColorNegative
		out.Explanation = "You have almost no safety buffer. Unexpected costs could push you into debt. Start setting money aside now."
	}
	return out
}
