package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/api"
	"github.com/insightdelivered/statement-analyzer/internal/categories"
	"github.com/insightdelivered/statement-analyzer/internal/config"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/ledger"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/report"
	"github.com/insightdelivered/statement-analyzer/internal/writer"
)

const previewRows = 10

type options struct {
	bank          string
	currency      string
	questionnaire *models.QuestionnaireAnswers
	credit        string
	output        string
	format        string
	preview       bool
}

func main() {
	bankFlag := flag.String("bank", "", "Bank: kaspi, halyk, jusan, forte, freedom, generic (auto-detected if omitted)")
	currencyFlag := flag.String("currency", "", "ISO 4217 currency code for report texts (default from CURRENCY)")
	maxPagesFlag := flag.Int("max-pages", 0, "Maximum pages to read per statement (default from MAX_PAGES)")
	questionnaireFlag := flag.String("questionnaire", "", "JSON file with the declared financial situation")
	creditFlag := flag.String("credit", "", "Credit bureau statement PDF")
	outputFlag := flag.String("output", "", "Output file path (defaults to input filename with the format extension)")
	formatFlag := flag.String("format", "json", "Output format: json (full report), csv or xlsx (ledger only)")
	previewFlag := flag.Bool("preview", false, "Print extracted lines and the first transactions without writing output")
	serveFlag := flag.Bool("serve", false, "Start the HTTP API instead of processing files")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Bank Statement Analyzer
by Insight Delivered

Reads Kazakhstan bank statement PDFs, rebuilds the transaction ledger and
produces a financial health report.

Usage:
  statement-analyzer [flags] <input.pdf> [input2.pdf ...]
  statement-analyzer -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Full JSON report, bank auto-detected
  statement-analyzer statement.pdf

  # Compare with declared answers and a credit bureau statement
  statement-analyzer --questionnaire=answers.json --credit=pkb.pdf statement.pdf

  # Export the ledger
  statement-analyzer --format=xlsx --output=ledger.xlsx statement.pdf

  # Check what the extractor sees
  statement-analyzer --preview statement.pdf

Environment:
  MAX_PAGES, CURRENCY, BANK, CATEGORY_RULES, PAGE_WORKERS, GC_EVERY_PAGES,
  SERVER_HOST, SERVER_PORT, MAX_UPLOAD_BYTES, RATE_LIMIT_PER_SECOND,
  RATE_LIMIT_BURST, LOG_LEVEL, LOG_FORMAT, METRICS_ENABLED
`)
	}

	flag.Parse()

	// Money in reports and API responses is written as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	if *versionFlag {
		fmt.Printf("statement-analyzer v%s\n", api.Version)
		os.Exit(0)
	}

	if *helpFlag || (flag.NArg() == 0 && !*serveFlag) {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("Configuration error: %v\n", err)
	}
	if *maxPagesFlag > 0 {
		cfg.Analysis.MaxPages = *maxPagesFlag
	}
	if *currencyFlag != "" {
		cfg.Analysis.Currency = strings.ToUpper(*currencyFlag)
	}
	if err := cfg.Validate(); err != nil {
		fatalf("Configuration error: %v\n", err)
	}

	log := logger.NewWithOptions(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	analyzer, err := newAnalyzer(cfg, *previewFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	if *serveFlag {
		if err := serve(analyzer, cfg, log); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	format := strings.ToLower(*formatFlag)
	switch format {
	case "json", "csv", "xlsx":
	default:
		fatalf("Unknown format %q. Supported: json, csv, xlsx\n", *formatFlag)
	}

	// A malformed questionnaire stops the run before any PDF is read.
	var answers *models.QuestionnaireAnswers
	if *questionnaireFlag != "" {
		answers, err = readQuestionnaire(*questionnaireFlag)
		if err != nil {
			fatalf("%v\n", err)
		}
	}

	opts := options{
		bank:          *bankFlag,
		currency:      cfg.Analysis.Currency,
		questionnaire: answers,
		credit:        *creditFlag,
		output:        *outputFlag,
		format:        format,
		preview:       *previewFlag,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	for _, inputPath := range flag.Args() {
		if err := processFile(ctx, analyzer, inputPath, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func newAnalyzer(cfg *config.Config, debug bool) (*report.Analyzer, error) {
	rules := categories.DefaultRuleSet()
	if cfg.Analysis.CategoryRules != "" {
		loaded, err := categories.LoadRuleSet(cfg.Analysis.CategoryRules)
		if err != nil {
			return nil, fmt.Errorf("category rules: %w", err)
		}
		rules = loaded
	}

	a := report.NewAnalyzer(ledger.Builder{
		MaxPages: cfg.Analysis.MaxPages,
		Workers:  cfg.Analysis.PageWorkers,
		GCEvery:  cfg.Analysis.GCEveryPages,
		Debug:    debug,
	}, rules)
	a.Currency = cfg.Analysis.Currency
	return a, nil
}

func serve(a *report.Analyzer, cfg *config.Config, log zerolog.Logger) error {
	app := api.New(a, cfg, log).App()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	log.Info().Str("addr", cfg.Server.Addr()).Msg("listening")
	return app.Listen(cfg.Server.Addr())
}

func processFile(ctx context.Context, a *report.Analyzer, inputPath string, opts options) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	doc, err := extractor.Open(inputPath)
	if err != nil {
		return fmt.Errorf("PDF extraction failed: %w", err)
	}
	defer doc.Close()

	fmt.Printf("  Read %d page(s) via %s\n", doc.NumPages(), doc.Source())

	if opts.preview {
		return preview(ctx, a, doc, opts.bank)
	}

	outPath := opts.output
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "." + opts.format
	}

	if opts.format != "json" {
		info, built, err := a.Ledger(ctx, doc, opts.bank)
		if err != nil {
			return err
		}
		fmt.Printf("  Bank: %s\n", info.Bank)
		fmt.Printf("  Found %d transaction(s)\n", len(built.Ledger))
		if err := writeLedger(a, outPath, opts.format, info, built.Ledger); err != nil {
			return err
		}
		fmt.Printf("  Output: %s\n", outPath)
		fmt.Println("  Done.")
		return nil
	}

	in := report.Input{
		Statement:     doc,
		Questionnaire: opts.questionnaire,
		Bank:          opts.bank,
		Currency:      opts.currency,
	}

	if opts.credit != "" {
		creditDoc, err := extractor.Open(opts.credit)
		if err != nil {
			return fmt.Errorf("credit statement extraction failed: %w", err)
		}
		defer creditDoc.Close()
		in.CreditStatement = creditDoc
	}

	rep, err := a.Analyze(ctx, in)
	if err != nil {
		return err
	}

	fmt.Printf("  Bank: %s\n", rep.Meta.Bank)
	fmt.Printf("  Found %d transaction(s)\n", rep.Meta.Transactions)
	for _, w := range rep.Warnings {
		fmt.Printf("  Warning: %s\n", w)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Printf("  Output: %s\n", outPath)
	fmt.Printf("  Health score: %.0f (%s)\n", rep.Health.Score, rep.Health.Status)
	fmt.Println("  Done.")
	return nil
}

func readQuestionnaire(path string) (*models.QuestionnaireAnswers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire: %w", err)
	}
	return models.ParseQuestionnaire(data)
}

func writeLedger(a *report.Analyzer, path, format string, info models.StatementInfo, l models.Ledger) error {
	switch format {
	case "xlsx":
		w := &writer.XLSXWriter{Classifier: a.Classifier}
		if err := w.WriteToFile(path, info, l); err != nil {
			return fmt.Errorf("XLSX write failed: %w", err)
		}
	default:
		w := &writer.CSVWriter{IncludeHeader: true, Classifier: a.Classifier}
		if err := w.WriteToFile(path, info, l); err != nil {
			return fmt.Errorf("CSV write failed: %w", err)
		}
	}
	return nil
}

// preview prints what the extractor produced for each page and the first
// transactions of the ledger.
func preview(ctx context.Context, a *report.Analyzer, doc ledger.Document, bank string) error {
	info, built, err := a.Ledger(ctx, doc, bank)
	if err != nil {
		return err
	}

	fmt.Printf("  Bank: %s\n", info.Bank)
	if info.AccountNumber != "" {
		fmt.Printf("  Account number: %s\n", info.AccountNumber)
	}
	if info.StatementPeriod != "" {
		fmt.Printf("  Period: %s\n", info.StatementPeriod)
	}
	fmt.Printf("  Pages: %d table, %d text\n", built.Stats.TablePages, built.Stats.TextPages)

	for _, d := range built.Debug {
		fmt.Printf("  [p%d %s %s] %s\n", d.Page, d.Source, d.Result, d.Text)
	}

	fmt.Printf("  First %d of %d transaction(s):\n", min(previewRows, len(built.Ledger)), len(built.Ledger))
	for i, t := range built.Ledger {
		if i == previewRows {
			break
		}
		fmt.Printf("    %s  %12s  %s\n", t.Date.Format("2006-01-02"), t.Amount.StringFixed(2), t.Description)
	}
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
