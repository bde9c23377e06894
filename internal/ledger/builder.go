package ledger

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/metrics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
)

var tracer = otel.Tracer("github.com/insightdelivered/statement-analyzer/internal/ledger")

// Extraction strategies, also used as metric labels.
const (
	StrategyTable = "table"
	StrategyText  = "text"
)

// DefaultMaxPages bounds how many pages are read from one statement.
const DefaultMaxPages = 30

// Builder turns a Document into a Ledger.
//
// Pages are decoded one at a time in page order. Row and line extraction may
// fan out over Workers goroutines; the result does not depend on Workers.
type Builder struct {
	MaxPages int  // 0 means DefaultMaxPages
	Workers  int  // extraction goroutines, minimum 1
	GCEvery  int  // force a GC after this many pages, 0 disables
	Debug    bool // record a DebugLine per row/line
}

// Stats describes one build.
type Stats struct {
	PagesTotal   int `json:"pages_total"`
	PagesVisited int `json:"pages_visited"`
	TablePages   int `json:"table_pages"`
	TextPages    int `json:"text_pages"`
	Rows         int `json:"rows"`
	RowsDropped  int `json:"rows_dropped"`
	Lines        int `json:"lines"`
	LinesDropped int `json:"lines_dropped"`
}

// Result is the output of Builder.BuildWithStats.
type Result struct {
	Ledger models.Ledger
	Stats  Stats
	Debug  []models.DebugLine
}

type pageResult struct {
	strategy string
	txns     []models.Transaction
	seen     int
	dropped  int
	debug    []models.DebugLine
}

// Build returns the date-ordered ledger for doc.
func (b Builder) Build(ctx context.Context, doc Document) (models.Ledger, error) {
	res, err := b.BuildWithStats(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.Ledger, nil
}

// BuildWithStats builds the ledger and reports extraction statistics.
func (b Builder) BuildWithStats(ctx context.Context, doc Document) (*Result, error) {
	ctx, span := tracer.Start(ctx, "ledger.Build")
	defer span.End()
	log := logger.FromContext(ctx)

	maxPages := b.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	total := doc.NumPages()
	limit := min(total, maxPages)
	if total > limit {
		log.Warn().Int("pages", total).Int("max_pages", limit).Msg("statement truncated to page limit")
	}

	results := make([]pageResult, limit)

	g := new(errgroup.Group)
	g.SetLimit(max(1, b.Workers))

	for i := 1; i <= limit; i++ {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return nil, err
		}

		page, err := doc.Page(ctx, i)
		if err != nil {
			_ = g.Wait()
			err = fmt.Errorf("%w: page %d: %w", ErrDocument, i, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "page decode failed")
			return nil, err
		}

		idx := i - 1
		g.Go(func() error {
			results[idx] = extractPage(page, b.Debug)
			return nil
		})

		if b.GCEvery > 0 && i%b.GCEvery == 0 {
			runtime.GC()
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Stats: Stats{PagesTotal: total, PagesVisited: limit}}
	for i, pr := range results {
		switch pr.strategy {
		case StrategyTable:
			res.Stats.TablePages++
			res.Stats.Rows += pr.seen
			res.Stats.RowsDropped += pr.dropped
		case StrategyText:
			res.Stats.TextPages++
			res.Stats.Lines += pr.seen
			res.Stats.LinesDropped += pr.dropped
		}
		metrics.PagesProcessed.WithLabelValues(pr.strategy).Inc()
		metrics.EntriesDropped.WithLabelValues(pr.strategy).Add(float64(pr.dropped))

		log.Debug().
			Int("page", i+1).
			Str("strategy", pr.strategy).
			Int("transactions", len(pr.txns)).
			Int("dropped", pr.dropped).
			Msg("page extracted")

		res.Ledger = append(res.Ledger, pr.txns...)
		res.Debug = append(res.Debug, pr.debug...)
	}

	sort.SliceStable(res.Ledger, func(i, j int) bool {
		return res.Ledger[i].Date.Before(res.Ledger[j].Date)
	})

	metrics.TransactionsExtracted.Add(float64(len(res.Ledger)))
	span.SetAttributes(
		attribute.Int("pages.total", total),
		attribute.Int("pages.visited", limit),
		attribute.Int("transactions", len(res.Ledger)),
	)
	log.Info().
		Int("pages", limit).
		Int("table_pages", res.Stats.TablePages).
		Int("text_pages", res.Stats.TextPages).
		Int("transactions", len(res.Ledger)).
		Msg("ledger built")

	return res, nil
}

// extractPage uses the page's tables when it has any and falls back to its
// text lines otherwise. The two are never mixed on one page.
func extractPage(page Page, debug bool) pageResult {
	var pr pageResult
	record := func(source, text string, ok bool) {
		if !debug {
			return
		}
		result := "skipped"
		if ok {
			result = "parsed"
		}
		pr.debug = append(pr.debug, models.DebugLine{Page: page.Number, Source: source, Text: text, Result: result})
	}

	if len(page.Tables) > 0 {
		pr.strategy = StrategyTable
		for _, table := range page.Tables {
			for _, row := range table {
				pr.seen++
				txn, ok := parser.ExtractRow(row)
				record(StrategyTable, strings.Join(row, " | "), ok)
				if !ok {
					pr.dropped++
					continue
				}
				pr.txns = append(pr.txns, txn)
			}
		}
		return pr
	}

	pr.strategy = StrategyText
	for _, line := range strings.Split(page.Text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pr.seen++
		txn, ok := parser.ExtractLine(line)
		record(StrategyText, line, ok)
		if !ok {
			pr.dropped++
			continue
		}
		pr.txns = append(pr.txns, txn)
	}
	return pr
}
