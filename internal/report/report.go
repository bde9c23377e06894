// Package report runs the full analysis of one statement and assembles the
// report document.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
	"github.com/insightdelivered/statement-analyzer/internal/categories"
	"github.com/insightdelivered/statement-analyzer/internal/ledger"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/metrics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/money"
	"github.com/insightdelivered/statement-analyzer/internal/narrative"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
	"github.com/insightdelivered/statement-analyzer/internal/scoring"
)

var tracer = otel.Tracer("github.com/insightdelivered/statement-analyzer/internal/report")

// Analysis outcomes, used as metric labels.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid_input"
	OutcomeError   = "error"
)

// Pages scanned for bank detection and statement metadata.
const metadataPages = 2

// ErrInvalidInput wraps caller mistakes such as an unknown bank label.
var ErrInvalidInput = errors.New("invalid analysis input")

// Input is one analysis request. CreditStatement and Questionnaire are optional.
type Input struct {
	Statement       ledger.Document
	CreditStatement ledger.Document
	Questionnaire   *models.QuestionnaireAnswers
	Bank            string // bank label, "" or "auto" to detect
	Currency        string
}

// Meta describes the run that produced a report.
type Meta struct {
	RunID              string          `json:"run_id"`
	TraceID            string          `json:"trace_id,omitempty"`
	Bank               models.BankType `json:"bank"`
	Currency           string          `json:"currency"`
	CategoriesVersion  string          `json:"categories_version"`
	GeneratedAt        string          `json:"generated_at"`
	Transactions       int             `json:"transactions"`
	HasQuestionnaire   bool            `json:"has_questionnaire"`
	HasCreditStatement bool            `json:"has_credit_statement"`
	Complete           bool            `json:"complete"`
}

// Report is the analysis result for one statement.
type Report struct {
	Meta       Meta                 `json:"meta"`
	Statement  models.StatementInfo `json:"statement"`
	Extraction ledger.Stats         `json:"extraction"`

	Totals     analytics.Totals          `json:"totals"`
	Balances   analytics.BalanceSummary  `json:"balances"`
	Daily      []analytics.Bucket        `json:"daily"`
	Weekly     []analytics.Bucket        `json:"weekly"`
	Monthly    []analytics.Bucket        `json:"monthly"`
	DailyTrend []analytics.DailyPoint    `json:"daily_trend"`
	Categories []analytics.CategoryTotal `json:"categories"`

	Credit          analytics.CreditAnalysis           `json:"credit_analysis"`
	Leaks           analytics.LeakAnalysis             `json:"money_leaks"`
	Anomalies       []analytics.Anomaly                `json:"anomalies"`
	RealIncome      analytics.RealIncomeAnalysis       `json:"real_income"`
	CreditStatement *analytics.CreditStatementAnalysis `json:"credit_statement,omitempty"`
	Reality         *analytics.RealityComparison       `json:"reality_comparison,omitempty"`

	Health       scoring.HealthScore        `json:"health_score"`
	CreditRisk   scoring.CreditRiskIndex    `json:"credit_risk"`
	SafetyBuffer scoring.SafetyBufferResult `json:"safety_buffer"`

	Recommendations []narrative.Recommendation  `json:"recommendations"`
	Scenarios       []narrative.Scenario        `json:"scenarios"`
	ActionPlan      []narrative.Action          `json:"action_plan"`
	BeforeAfter     narrative.BeforeAfterResult `json:"before_after"`
	RealitySummary  *narrative.RealitySummary   `json:"financial_reality,omitempty"`

	Transactions models.Ledger      `json:"transactions"`
	Debug        []models.DebugLine `json:"debug_lines,omitempty"`
	Warnings     []string           `json:"warnings"`
}

// Analyzer holds the configured stages of the pipeline. It is safe for
// concurrent use once built.
type Analyzer struct {
	Builder         ledger.Builder
	CreditRules     ledger.CreditRules
	Classifier      *categories.Classifier
	Credit          *analytics.CreditDetector
	Leaks           analytics.LeakConfig
	CreditStatement analytics.CreditStatementConfig
	RealIncome      analytics.RealIncomeConfig
	Reality         analytics.RealityConfig
	AnomalyCount    int
	Currency        string
	Now             func() time.Time
}

// NewAnalyzer returns an Analyzer with default detector thresholds.
func NewAnalyzer(b ledger.Builder, rules categories.RuleSet) *Analyzer {
	return &Analyzer{
		Builder:         b,
		CreditRules:     ledger.DefaultCreditRules(),
		Classifier:      categories.NewClassifier(rules),
		Credit:          analytics.NewCreditDetector(analytics.DefaultCreditConfig()),
		Leaks:           analytics.DefaultLeakConfig(),
		CreditStatement: analytics.DefaultCreditStatementConfig(),
		RealIncome:      analytics.DefaultRealIncomeConfig(),
		Reality:         analytics.DefaultRealityConfig(),
		AnomalyCount:    analytics.DefaultAnomalyCount,
		Currency:        money.DefaultCurrency,
		Now:             time.Now,
	}
}

// Analyze builds the ledger from in.Statement and derives the full report.
// A malformed questionnaire or bank label fails before any page is read.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (rep *Report, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "report.Analyze")
	defer span.End()
	log := logger.FromContext(ctx)

	defer func() {
		outcome := OutcomeOK
		switch {
		case errors.Is(err, models.ErrInvalidQuestionnaire), errors.Is(err, ErrInvalidInput):
			outcome = OutcomeInvalid
		case err != nil:
			outcome = OutcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, "analysis failed")
		}
		metrics.Analyses.WithLabelValues(outcome).Inc()
		metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	if in.Questionnaire != nil {
		if err := in.Questionnaire.Validate(); err != nil {
			return nil, err
		}
	}
	currency := in.Currency
	if currency == "" {
		currency = a.Currency
	}

	info, built, err := a.Ledger(ctx, in.Statement, in.Bank)
	if err != nil {
		return nil, err
	}

	var credits []models.CreditTransaction
	if in.CreditStatement != nil {
		credits, err = a.Builder.ExtractCredit(ctx, in.CreditStatement, a.CreditRules)
		if err != nil {
			return nil, fmt.Errorf("credit statement: %w", err)
		}
	}

	rep = a.assemble(built.Ledger, credits, in, currency)
	rep.Statement = info
	rep.Meta.Bank = info.Bank
	rep.Extraction = built.Stats
	rep.Debug = built.Debug
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
		rep.Meta.TraceID = sc.TraceID().String()
	}

	span.SetAttributes(
		attribute.String("run_id", rep.Meta.RunID),
		attribute.String("bank", string(info.Bank)),
		attribute.Int("transactions", rep.Meta.Transactions),
		attribute.Float64("health_score", rep.Health.Score),
	)
	log.Info().
		Str("run_id", rep.Meta.RunID).
		Str("bank", string(info.Bank)).
		Int("transactions", rep.Meta.Transactions).
		Float64("health_score", rep.Health.Score).
		Int("credit_risk", rep.CreditRisk.Score).
		Bool("complete", rep.Meta.Complete).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	return rep, nil
}

// Ledger reads the statement metadata and builds the ledger of doc without
// analysing it. bankLabel "" or "auto" detects the bank from the first pages.
func (a *Analyzer) Ledger(ctx context.Context, doc ledger.Document, bankLabel string) (models.StatementInfo, *ledger.Result, error) {
	bank, explicit, err := parser.ParseBank(bankLabel)
	if err != nil {
		return models.StatementInfo{}, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if doc == nil {
		return models.StatementInfo{}, nil, fmt.Errorf("%w: no statement document", ErrInvalidInput)
	}

	texts, err := ledger.PageTexts(ctx, doc, metadataPages)
	if err != nil {
		return models.StatementInfo{}, nil, fmt.Errorf("%w: %w", ledger.ErrDocument, err)
	}
	if !explicit {
		bank = ""
	}
	info := parser.StatementMetadata(texts, bank)

	built, err := a.Builder.BuildWithStats(ctx, doc)
	if err != nil {
		return models.StatementInfo{}, nil, fmt.Errorf("statement: %w", err)
	}
	return info, built, nil
}

// assemble runs every stage after extraction. It does not fail.
func (a *Analyzer) assemble(l models.Ledger, credits []models.CreditTransaction, in Input, currency string) *Report {
	q := in.Questionnaire
	gen := narrative.New(currency)

	rep := &Report{
		Meta: Meta{
			RunID:              uuid.NewString(),
			Currency:           currency,
			CategoriesVersion:  a.Classifier.Version(),
			GeneratedAt:        a.Now().UTC().Format(time.RFC3339),
			Transactions:       len(l),
			HasQuestionnaire:   q != nil,
			HasCreditStatement: in.CreditStatement != nil,
			Complete:           q != nil,
		},
		Transactions: nonNil(l),
		Warnings:     []string{},
	}
	if !money.Known(currency) {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("unknown currency %q: amounts are shown with the currency code", currency))
	}
	if q == nil {
		rep.Warnings = append(rep.Warnings, "questionnaire not provided: the report does not compare declared and actual figures")
	}
	if len(l) == 0 {
		rep.Warnings = append(rep.Warnings, "no transactions found in the statement")
	}

	rep.Totals = analytics.ComputeTotals(l)
	rep.Balances = analytics.Balances(l)
	rep.Daily = nonNil(analytics.Summarize(l, analytics.Daily))
	rep.Weekly = nonNil(analytics.Summarize(l, analytics.Weekly))
	rep.Monthly = nonNil(analytics.Summarize(l, analytics.Monthly))
	rep.DailyTrend = nonNil(analytics.DailyTrend(l))
	rep.Categories = nonNil(analytics.CategoryBreakdown(l, a.Classifier))

	rep.Credit = a.Credit.Detect(l)
	rep.Leaks = analytics.DetectLeaks(l, a.Leaks)
	rep.Anomalies = nonNil(analytics.DetectAnomalies(l, a.Classifier, a.AnomalyCount))
	rep.RealIncome = analytics.RealIncome(l, a.RealIncome)
	if in.CreditStatement != nil {
		cs := analytics.AnalyzeCreditStatement(credits, a.CreditStatement)
		rep.CreditStatement = &cs
	}

	rep.Health = scoring.Health(scoring.HealthInput{
		Totals:        rep.Totals,
		CreditPercent: rep.Credit.PercentageOfExpenses,
		LeakMonthly:   rep.Leaks.TotalMonthly,
		Closing:       rep.Balances.Closing,
	})
	rep.SafetyBuffer = scoring.SafetyBuffer(rep.Totals.Spending, rep.Balances.Closing, rep.Totals.Months)
	risk := scoring.RiskInput{
		CreditPercent:   rep.Credit.PercentageOfExpenses,
		DependencyRatio: rep.RealIncome.CreditDependencyRatio,
		Statement:       rep.CreditStatement,
	}
	if q != nil {
		risk.Perception = q.CreditLoadPerception
	}
	rep.CreditRisk = scoring.CreditRisk(risk)

	recs := gen.Recommendations(narrative.RecommendationInput{
		Totals:     rep.Totals,
		Credit:     rep.Credit,
		Leaks:      rep.Leaks,
		Categories: rep.Categories,
	})
	if q != nil {
		recs = narrative.Prioritize(recs, q.PrimaryGoal)
	}
	rep.Recommendations = recs
	rep.Scenarios = gen.Scenarios(rep.Totals, rep.Credit, recs)
	rep.ActionPlan = gen.ActionPlan(rep.Credit, rep.Leaks)
	rep.BeforeAfter = gen.BeforeAfter(rep.Totals, rep.Credit, rep.Leaks, recs)

	if q != nil {
		cfg := a.Reality
		cfg.Currency = currency
		cmp := analytics.CompareDeclared(l, q, cfg)
		rep.Reality = &cmp
		rep.Warnings = append(rep.Warnings, cmp.Warnings...)
		summary := gen.RealitySummary(q, cmp, rep.CreditStatement)
		rep.RealitySummary = &summary
	}

	return rep
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
