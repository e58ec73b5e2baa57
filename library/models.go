package library

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// LoanPeriodDays is the fixed loan period applied by IssueBook.
	LoanPeriodDays = 7
	// FinePerDay is charged for every day a copy is held past its loan period.
	FinePerDay = 10

	dateLayout = "2006-01-02"
)

// BookRecord is one catalog entry together with its active loans.
// The ID is the key of the stored document and is not serialized inside the record.
type BookRecord struct {
	ID              string       `json:"-"`
	Title           string       `json:"title"`
	Author          string       `json:"author"`
	TotalCopies     int          `json:"total_copies"`
	AvailableCopies int          `json:"available_copies"`
	Loans           []LoanRecord `json:"issued_copies"`
}

// LoanRecord is a single copy currently out with a borrower.
type LoanRecord struct {
	BorrowerID string `json:"usn"`
	Contact    string `json:"email"`
	IssueDate  Date   `json:"issue_date"`
	DueDate    Date   `json:"due_date"`
}

// Overdue reports whether the loan's due date lies before today.
func (lr LoanRecord) Overdue(today Date) bool { return lr.DueDate.Before(today) }

// Fine is the amount owed when the loan is returned on the given day.
func (lr LoanRecord) Fine(today Date) int {
	held := today.DaysSince(lr.IssueDate)
	if held <= LoanPeriodDays {
		return 0
	}
	return (held - LoanPeriodDays) * FinePerDay
}

// loanIndex returns the position of the first active loan held by borrower, or -1.
func (b *BookRecord) loanIndex(borrower string) int {
	key := FoldKey(borrower)
	for i, lr := range b.Loans {
		if FoldKey(lr.BorrowerID) == key {
			return i
		}
	}
	return -1
}

// Consistent checks the copy-count and unique-borrower invariants.
func (b *BookRecord) Consistent() error {
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return fmt.Errorf("book %s: available copies %d outside 0..%d", b.ID, b.AvailableCopies, b.TotalCopies)
	}
	if b.AvailableCopies+len(b.Loans) != b.TotalCopies {
		return fmt.Errorf("book %s: %d available + %d loans != %d total",
			b.ID, b.AvailableCopies, len(b.Loans), b.TotalCopies)
	}
	seen := make(map[string]struct{}, len(b.Loans))
	for _, lr := range b.Loans {
		key := FoldKey(lr.BorrowerID)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("book %s: borrower %s holds more than one copy", b.ID, lr.BorrowerID)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Document is the complete ledger state keyed by book ID.
type Document map[string]*BookRecord

// Sorted returns the books ordered by case-folded title, ties broken by ID.
func (d Document) Sorted() []*BookRecord {
	books := make([]*BookRecord, 0, len(d))
	for id, b := range d {
		b.ID = id
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool {
		ti, tj := FoldKey(books[i].Title), FoldKey(books[j].Title)
		if ti != tj {
			return ti < tj
		}
		return books[i].ID < books[j].ID
	})
	return books
}

// Date is a calendar day with no time-of-day component.
type Date struct {
	t time.Time
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) String() string          { return d.t.Format(dateLayout) }
func (d Date) IsZero() bool            { return d.t.IsZero() }
func (d Date) Before(other Date) bool  { return d.t.Before(other.t) }
func (d Date) AddDays(n int) Date      { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Equal(other Date) bool   { return d.t.Equal(other.t) }
func (d Date) DaysSince(from Date) int { return int(d.t.Sub(from.t).Hours() / 24) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
