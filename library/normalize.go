package library

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldKey is the single comparison key used for borrower IDs, search queries
// and title ordering. The input is trimmed, NFC-normalized and case folded.
func FoldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// matchesQuery reports whether the book's title or author contains query.
// An empty query matches every book.
func matchesQuery(b *BookRecord, query string) bool {
	q := FoldKey(query)
	if q == "" {
		return true
	}
	return strings.Contains(FoldKey(b.Title), q) || strings.Contains(FoldKey(b.Author), q)
}
