package extractor

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-analyzer/internal/ledger"
)

// Layout thresholds in PDF user-space units (1/72 inch).
const (
	rowTolerance = 2.0 // glyphs this close vertically share a row
	cellGap      = 8.0 // horizontal gap that starts a new cell
	wordGapRatio = 0.15
)

// A page yields a table when at least minTableRows rows have minTableCells cells.
const (
	minTableRows  = 2
	minTableCells = 3
)

type glyph struct {
	x, y, w, size float64
	s             string
}

// end is the right edge of g. Some producers report zero widths; those are
// estimated from the font size.
func (g glyph) end() float64 {
	if g.w > 0 {
		return g.x + g.w
	}
	return g.x + float64(utf8.RuneCountInString(g.s))*g.size*0.5
}

func pageGlyphs(p pdf.Page) []glyph {
	content := p.Content()
	out := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		out = append(out, glyph{x: t.X, y: t.Y, w: t.W, size: t.FontSize, s: t.S})
	}
	return out
}

// clusterRows groups glyphs into visual rows from top to bottom and splits
// each row into cells at wide horizontal gaps. Empty cells are dropped.
func clusterRows(glyphs []glyph) [][]string {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	// PDF y grows upwards.
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].y > sorted[j].y })

	var rows [][]string
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && math.Abs(sorted[i].y-sorted[start].y) <= rowTolerance {
			continue
		}
		if cells := splitCells(sorted[start:i]); len(cells) > 0 {
			rows = append(rows, cells)
		}
		start = i
	}
	return rows
}

func splitCells(row []glyph) []string {
	sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })

	var cells []string
	var cur strings.Builder
	flush := func() {
		if text := strings.Join(strings.Fields(cur.String()), " "); text != "" {
			cells = append(cells, text)
		}
		cur.Reset()
	}

	for i, g := range row {
		if i > 0 {
			gap := g.x - row[i-1].end()
			switch {
			case gap > cellGap:
				flush()
			case gap > math.Max(g.size*wordGapRatio, 1):
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(g.s)
	}
	flush()
	return cells
}

// detectTables returns the rows with enough cells as one table, or nil.
func detectTables(rows [][]string) []ledger.Table {
	var table ledger.Table
	for _, row := range rows {
		if len(row) >= minTableCells {
			table = append(table, row)
		}
	}
	if len(table) < minTableRows {
		return nil
	}
	return []ledger.Table{table}
}

// rowsText renders clustered rows as text lines with cells two spaces apart.
func rowsText(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "  "))
	}
	return strings.Join(lines, "\n")
}
