// Package ledger builds the date-ordered transaction ledger from a paged
// statement document.
package ledger

import (
	"context"
	"errors"
)

// ErrDocument marks a failure to read the statement document itself.
var ErrDocument = errors.New("statement document unreadable")

// Table is a list of rows; each row is a list of cell strings. Empty strings
// stand for null cells.
type Table [][]string

// Page is one decoded page of a statement.
type Page struct {
	Number int
	Tables []Table
	Text   string
}

// Document gives page-level access to a statement. Page numbers are 1-based.
type Document interface {
	NumPages() int
	Page(ctx context.Context, n int) (Page, error)
}

// StaticDocument is an in-memory Document.
type StaticDocument []Page

// NumPages implements Document.
func (d StaticDocument) NumPages() int { return len(d) }

// Page implements Document.
func (d StaticDocument) Page(_ context.Context, n int) (Page, error) {
	if n < 1 || n > len(d) {
		return Page{}, errors.New("page out of range")
	}
	p := d[n-1]
	p.Number = n
	return p, nil
}

// PageTexts collects the text rendering of up to maxPages pages. Used for
// bank detection and statement metadata.
func PageTexts(ctx context.Context, doc Document, maxPages int) ([]string, error) {
	n := doc.NumPages()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}
	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p, err := doc.Page(ctx, i)
		if err != nil {
			return nil, err
		}
		texts = append(texts, p.Text)
	}
	return texts, nil
}
