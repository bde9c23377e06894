// Package writer exports a ledger as CSV or XLSX.
package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

const dateLayout = "2006-01-02"

// ledgerRow is one exported transaction.
type ledgerRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Category    string `csv:"Category"`
	Amount      string `csv:"Amount"`
	Balance     string `csv:"Balance"`
}

func ledgerRows(l models.Ledger, c analytics.Classifier) []*ledgerRow {
	rows := make([]*ledgerRow, 0, len(l))
	for _, t := range l {
		row := &ledgerRow{
			Date:        t.Date.Format(dateLayout),
			Description: t.Description,
			Amount:      t.Amount.StringFixed(2),
		}
		if c != nil {
			row.Category = c.Classify(t.Description)
		}
		if t.Balance != nil {
			row.Balance = t.Balance.StringFixed(2)
		}
		rows = append(rows, row)
	}
	return rows
}

// CSVWriter writes a ledger in CSV format. Classifier is optional; without it
// the Category column stays empty.
type CSVWriter struct {
	IncludeHeader bool
	Classifier    analytics.Classifier
}

// WriteToFile writes the ledger to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, info models.StatementInfo, l models.Ledger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, info, l)
}

// Write writes the ledger in CSV format to out, preceded by "# key,value"
// metadata rows when IncludeHeader is set.
func (w *CSVWriter) Write(out io.Writer, info models.StatementInfo, l models.Ledger) error {
	csvWriter := gocsv.DefaultCSVWriter(out)

	if w.IncludeHeader {
		meta := [][2]string{
			{"# Bank", string(info.Bank)},
			{"# Account Number", info.AccountNumber},
			{"# Statement Period", info.StatementPeriod},
		}
		for _, m := range meta {
			if m[1] == "" {
				continue
			}
			if err := csvWriter.Write([]string{m[0], m[1]}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	if err := gocsv.MarshalCSV(ledgerRows(l, w.Classifier), csvWriter); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
