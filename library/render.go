package library

import (
	"fmt"
	"iter"
)

// LineKind tells the presentation layer how to treat a listing line.
type LineKind int

const (
	LineBook LineKind = iota
	LineLoan
	// LineNotice is the single sentinel line of an empty listing.
	LineNotice
)

const (
	emptyLibraryNotice = "No books in library."
	noMatchNotice      = "No matching books found."
)

// Line is one row of a listing.
type Line struct {
	Kind    LineKind
	BookID  string
	Text    string
	Overdue bool
}

func bookLine(b *BookRecord) Line {
	return Line{
		Kind:   LineBook,
		BookID: b.ID,
		Text: fmt.Sprintf("%s | %s by %s | Total: %d | Available: %d",
			b.ID, b.Title, b.Author, b.TotalCopies, b.AvailableCopies),
	}
}

func loanLine(b *BookRecord, lr LoanRecord, today Date) Line {
	return Line{
		Kind:   LineLoan,
		BookID: b.ID,
		Text: fmt.Sprintf("   Issued to: %s (%s) | Issued: %s | Due: %s",
			lr.BorrowerID, lr.Contact, lr.IssueDate, lr.DueDate),
		Overdue: lr.Overdue(today),
	}
}

// render yields a summary line per book followed by its loan lines. The
// returned sequence is restartable: it only reads the books slice.
func render(books []*BookRecord, today Date, notice string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		if len(books) == 0 {
			yield(Line{Kind: LineNotice, Text: notice})
			return
		}
		for _, b := range books {
			if !yield(bookLine(b)) {
				return
			}
			for _, lr := range b.Loans {
				if !yield(loanLine(b, lr, today)) {
					return
				}
			}
		}
	}
}

// Listing renders every book in doc ordered by title.
func Listing(doc Document, today Date) iter.Seq[Line] {
	return render(doc.Sorted(), today, emptyLibraryNotice)
}

// SearchListing renders the books whose title or author contains query.
func SearchListing(doc Document, query string, today Date) iter.Seq[Line] {
	var hits []*BookRecord
	for _, b := range doc.Sorted() {
		if matchesQuery(b, query) {
			hits = append(hits, b)
		}
	}
	return render(hits, today, noMatchNotice)
}
