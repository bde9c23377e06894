package narrative

import (
	"fmt"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
)

const maxActions = 5

// Action is one dated step of the 30-day plan.
type Action struct {
	Days   string `json:"day"`
	Code   string `json:"code"`
	Action string `json:"action"`
	How    string `json:"how"`
}

// ActionPlan builds a 30-day plan of at most five steps.
func (g Generator) ActionPlan(credit analytics.CreditAnalysis, leaks analytics.LeakAnalysis) []Action {
	var out []Action

	if credit.PercentageOfExpenses > creditPercent {
		out = append(out, Action{
			Days:   "Days 1-3",
			Code:   "review_credit",
			Action: "Review every credit and installment payment",
			How:    "Go through each loan and installment. Look for refinancing or early repayment options.",
		})
	}

	if top, ok := leaks.Top(); ok {
		out = append(out, Action{
			Days:   "Days 4-7",
			Code:   "cut_top_leak",
			Action: fmt.Sprintf("Cut spending at %s", quote(top.Merchant)),
			How:    fmt.Sprintf("This adds up to %s. Decide which of these purchases you really need.", g.format(top.Total)),
		})
	}

	if leaks.TotalMonthly.GreaterThan(leakLimit) {
		out = append(out, Action{
			Days:   "Days 8-14",
			Code:   "set_limits",
			Action: "Set limits on frequent spending categories",
			How:    "Set daily or monthly limits in your banking app for food delivery, entertainment and other frequent small purchases.",
		})
	}

	if n := len(credit.RecurringPayments); n > 0 {
		out = append(out, Action{
			Days:   "Days 15-21",
			Code:   "review_recurring",
			Action: "Review recurring payments and subscriptions",
			How:    fmt.Sprintf("You have %d recurring payments. Check that you still use each of them and cancel the rest.", n),
		})
	}

	out = append(out, Action{
		Days:   "Days 22-30",
		Code:   "start_saving",
		Action: "Start building a safety buffer",
		How:    fmt.Sprintf("Pick an amount you can set aside every month (even %s is a good start) and automate the transfer to a savings account.", g.format(tenThousand)),
	})

	if len(out) > maxActions {
		out = out[:maxActions]
	}
	return out
}
