// Package metrics holds the Prometheus collectors for the analyzer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the analyzer's own registry, served on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// PagesProcessed counts statement pages by extraction strategy ("table" or "text").
	PagesProcessed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statement_analyzer",
		Name:      "pages_processed_total",
		Help:      "Statement pages processed, by extraction strategy.",
	}, []string{"strategy"})

	// TransactionsExtracted counts ledger entries produced by the builder.
	TransactionsExtracted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "statement_analyzer",
		Name:      "transactions_extracted_total",
		Help:      "Transactions extracted from statements.",
	})

	// EntriesDropped counts rows and lines that did not yield a transaction.
	EntriesDropped = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statement_analyzer",
		Name:      "entries_dropped_total",
		Help:      "Table rows and text lines skipped during extraction.",
	}, []string{"strategy"})

	// Analyses counts report builds by outcome.
	Analyses = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statement_analyzer",
		Name:      "analyses_total",
		Help:      "Analysis requests, by outcome.",
	}, []string{"outcome"})

	// AnalysisDuration observes end-to-end analysis latency.
	AnalysisDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "statement_analyzer",
		Name:      "analysis_duration_seconds",
		Help:      "Time spent building a report, including PDF extraction.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
