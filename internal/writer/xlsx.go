package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-analyzer/internal/analytics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Sheet names of the XLSX export.
const (
	SheetLedger     = "Ledger"
	SheetMonthly    = "Monthly"
	SheetCategories = "Categories"
)

// XLSXWriter writes a ledger workbook with the transactions, monthly totals
// and the category breakdown on separate sheets.
type XLSXWriter struct {
	Classifier analytics.Classifier
}

// WriteToFile writes the workbook to path.
func (w *XLSXWriter) WriteToFile(path string, info models.StatementInfo, l models.Ledger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, info, l)
}

// Write writes the workbook to out.
func (w *XLSXWriter) Write(out io.Writer, info models.StatementInfo, l models.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetLedger); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetMonthly, SheetCategories} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	ledger := [][]interface{}{{"Date", "Description", "Category", "Amount", "Balance"}}
	for _, t := range l {
		category := ""
		if w.Classifier != nil {
			category = w.Classifier.Classify(t.Description)
		}
		var balance interface{}
		if t.Balance != nil {
			balance = number(*t.Balance)
		}
		ledger = append(ledger, []interface{}{t.Date.Format(dateLayout), t.Description, category, number(t.Amount), balance})
	}

	monthly := [][]interface{}{{"Month", "Income", "Spending", "Net", "Transactions"}}
	for _, b := range analytics.Summarize(l, analytics.Monthly) {
		monthly = append(monthly, []interface{}{b.Key, number(b.Income), number(b.Spending), number(b.Net), b.Count})
	}

	cats := [][]interface{}{{"Category", "Income", "Spending", "Transactions"}}
	if w.Classifier != nil {
		for _, c := range analytics.CategoryBreakdown(l, w.Classifier) {
			cats = append(cats, []interface{}{c.Category, number(c.Income), number(c.Spending), c.Count})
		}
	}

	sheets := []struct {
		name  string
		rows  [][]interface{}
		width float64
	}{
		{SheetLedger, ledger, 40},
		{SheetMonthly, monthly, 14},
		{SheetCategories, cats, 20},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.rows, header, s.width); err != nil {
			return err
		}
	}

	if info.Bank != "" {
		if err := f.SetDocProps(&excelize.DocProperties{
			Title:       "Statement ledger",
			Subject:     info.StatementPeriod,
			Description: fmt.Sprintf("bank=%s account=%s", info.Bank, info.AccountNumber),
		}); err != nil {
			return fmt.Errorf("failed to set document properties: %w", err)
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeSheet writes rows starting at A1, bolds the first row and widens column B.
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int, width float64) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "B", "B", width)
}

func number(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
