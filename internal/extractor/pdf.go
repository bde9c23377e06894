// Package extractor decodes PDF statements into pages for the ledger builder.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-analyzer/internal/ledger"
)

// ErrUnreadablePDF is returned when no decoder could read the file.
var ErrUnreadablePDF = errors.New("unreadable PDF")

// Page decoders, in the order they are tried.
const (
	SourceLibrary   = "pdf"
	SourcePdftotext = "pdftotext"
	SourceOCR       = "ocr"
)

// Pages decoded when checking that the library produces readable text.
const probePages = 2

// Document is a ledger.Document backed by ledongthuc/pdf. When the library
// cannot read the file, it holds text-only pages from poppler or OCR instead.
// A Document is not safe for concurrent use.
type Document struct {
	file   *os.File
	reader *pdf.Reader
	pages  []string
	source string
}

var _ ledger.Document = (*Document)(nil)

// Open opens the PDF at path.
func Open(path string) (*Document, error) {
	f, r, libErr := openLibrary(path)
	if libErr == nil {
		doc := &Document{file: f, reader: r, source: SourceLibrary}
		if doc.readable() {
			return doc, nil
		}
		// Garbled text layer; prefer an external decoder when one works.
		if pages, source, err := fallbackPages(path); err == nil {
			doc.Close()
			return &Document{pages: pages, source: source}, nil
		}
		return doc, nil
	}

	pages, source, err := fallbackPages(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v; %v", ErrUnreadablePDF, libErr, err)
	}
	return &Document{pages: pages, source: source}, nil
}

// OpenBytes opens an in-memory PDF. External decoders get a temporary copy.
func OpenBytes(data []byte) (*Document, error) {
	r, libErr := newLibraryReader(data)
	if libErr == nil {
		doc := &Document{reader: r, source: SourceLibrary}
		if doc.readable() {
			return doc, nil
		}
	}

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	pages, source, err := fallbackPages(tmp.Name())
	if err != nil {
		if libErr == nil {
			return &Document{reader: r, source: SourceLibrary}, nil
		}
		return nil, fmt.Errorf("%w: %v; %v", ErrUnreadablePDF, libErr, err)
	}
	return &Document{pages: pages, source: source}, nil
}

// Source names the decoder that produced the pages.
func (d *Document) Source() string { return d.source }

// Close releases the underlying file, if any.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// NumPages implements ledger.Document.
func (d *Document) NumPages() int {
	if d.reader != nil {
		return d.reader.NumPage()
	}
	return len(d.pages)
}

// Page implements ledger.Document. Library pages carry the GetTextByRow text
// and any tables recovered from glyph positions; fallback pages are text only.
func (d *Document) Page(ctx context.Context, n int) (page ledger.Page, err error) {
	if err := ctx.Err(); err != nil {
		return ledger.Page{}, err
	}
	if n < 1 || n > d.NumPages() {
		return ledger.Page{}, fmt.Errorf("page %d out of range 1..%d", n, d.NumPages())
	}
	if d.reader == nil {
		return ledger.Page{Number: n, Text: d.pages[n-1]}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed on page %d: %v", n, r)
		}
	}()

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return ledger.Page{Number: n}, nil
	}

	rows := clusterRows(pageGlyphs(p))
	text := textByRow(p)
	if text == "" {
		text = rowsText(rows)
	}
	if text == "" {
		text = plainText(p)
	}
	return ledger.Page{Number: n, Tables: detectTables(rows), Text: text}, nil
}

// readable decodes the first pages and checks their text.
func (d *Document) readable() bool {
	n := min(d.NumPages(), probePages)
	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p, err := d.Page(context.Background(), i)
		if err != nil {
			return false
		}
		texts = append(texts, p.Text)
	}
	return isReadableText(texts)
}

func openLibrary(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()

	f, r, err = pdf.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if r.NumPage() == 0 {
		f.Close()
		return nil, nil, errors.New("PDF has no pages")
	}
	return f, r, nil
}

func newLibraryReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()

	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if r.NumPage() == 0 {
		return nil, errors.New("PDF has no pages")
	}
	return r, nil
}

// textByRow renders the page with the library's row grouping.
func textByRow(p pdf.Page) string {
	rows, err := p.GetTextByRow()
	if err != nil {
		return ""
	}
	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func plainText(p pdf.Page) string {
	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		fonts[name] = &f
	}
	text, err := p.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
