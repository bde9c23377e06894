package scoring

import (
	"fmt"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
)

// Credit risk levels.
const (
	RiskSafe      = "safe"
	RiskRisky     = "risky"
	RiskDangerous = "dangerous"
	RiskCritical  = "critical"
)

// RiskInput is what the credit risk index is computed from. Statement is nil
// without a credit statement; Perception is empty without a questionnaire.
type RiskInput struct {
	CreditPercent   float64
	DependencyRatio float64
	Statement       *analytics.CreditStatementAnalysis
	Perception      string
}

// CreditRiskIndex is the 0-100 credit risk score, higher is worse.
type CreditRiskIndex struct {
	Score       int      `json:"score"`
	Level       string   `json:"level"`
	Label       string   `json:"label"`
	Explanation string   `json:"explanation"`
	RiskFactors []string `json:"risk_factors"`
}

// CreditRisk adds up risk points from credit load, credit dependency,
// borrowing behavior and self-perception, capped at 100.
func CreditRisk(in RiskInput) CreditRiskIndex {
	score := 0
	factors := []string{}
	add := func(points int, factor string) {
		score += points
		factors = append(factors, factor)
	}

	switch pct := in.CreditPercent; {
	case pct > 40:
		add(30, "Credit payments are more than 40% of expenses")
	case pct > 25:
		add(20, "Credit payments are 25-40% of expenses")
	case pct > 10:
		add(10, "Credit payments are 10-25% of expenses")
	}

	switch dep := in.DependencyRatio; {
	case dep > 30:
		add(25, "More than 30% of income is borrowed money")
	case dep > 15:
		add(15, "15-30% of income is borrowed money")
	case dep > 5:
		add(5, "5-15% of income is borrowed money")
	}

	if s := in.Statement; s != nil {
		if s.RefinancingDetected {
			add(20, "Refinancing detected: new loans taken to repay old ones")
		}
		switch s.CreditSpiralRisk {
		case analytics.SpiralHigh:
			add(25, "Critical: credit spiral detected (frequent, growing new loans)")
		case analytics.SpiralMedium:
			add(15, "High risk: frequent new loans")
		}
		switch n := s.LoanFrequency; {
		case n >= 5:
			add(15, fmt.Sprintf("Very frequent borrowing: %d loans in the period", n))
		case n >= 3:
			add(10, fmt.Sprintf("Frequent borrowing: %d loans in the period", n))
		}
	}

	switch {
	case in.Perception == "low" && in.CreditPercent > 25:
		add(10, "Mismatch: you consider your credit load low, but it is high")
	case in.Perception == "medium" && in.CreditPercent > 40:
		add(10, "Mismatch: your actual credit load is above your own estimate")
	}

	out := CreditRiskIndex{Score: min(100, score), RiskFactors: factors}
	switch {
	case out.Score >= 70:
		out.Level, out.Label = RiskCritical, "Critical risk"
		out.Explanation = "Your situation is critical. You depend heavily on credit and a credit spiral is possible. Urgent action is needed."
	case out.Score >= 50:
		out.Level, out.Label = RiskDangerous, "Dangerous level"
		out.Explanation = "Your credit load is dangerous. You depend on credit and there are signs of refinancing. Changes are needed."
	case out.Score >= 30:
		out.Level, out.Label = RiskRisky, "Risky level"
		out.Explanation = "Your credit load is risky. Pay attention to it and start reducing your dependence on credit."
	default:
		out.Level, out.Label = RiskSafe, "Safe level"
		out.Explanation = "Your credit load is within normal limits. Keep monitoring it."
	}
	return out
}
