package library

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// Result is what the presentation layer shows after an operation.
type Result struct {
	OK      bool
	Message string
}

// LibraryManager is a thin façade over the Ledger, keeping CLI code simple.
// It turns ledger outcomes into user-facing messages.
type LibraryManager struct {
	ledger *Ledger
	close  func() error
}

// NewLibraryManager opens the store named by cfg and wraps it in a Ledger.
func NewLibraryManager(cfg Config, logger *slog.Logger) (*LibraryManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, closeFn, err := cfg.OpenStore()
	if err != nil {
		return nil, err
	}
	opts := []Option{WithResetOnCorrupt(cfg.ResetOnCorrupt)}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	ledger, err := NewLedger(store, opts...)
	if err != nil {
		closeFn()
		return nil, err
	}
	return &LibraryManager{ledger: ledger, close: closeFn}, nil
}

// NewManagerForLedger wraps an already constructed ledger.
func NewManagerForLedger(l *Ledger) *LibraryManager {
	return &LibraryManager{ledger: l, close: func() error { return nil }}
}

// Close releases the underlying store.
func (lm *LibraryManager) Close() error { return lm.close() }

// Ledger exposes the wrapped ledger.
func (lm *LibraryManager) Ledger() *Ledger { return lm.ledger }

// ------------------ Catalog ------------------

// AddBook validates the form fields and adds the copies. copiesText must be
// a positive whole number written in digits.
func (lm *LibraryManager) AddBook(id, title, author, copiesText string) Result {
	copies, ok := parseCopies(copiesText)
	if !ok || strings.TrimSpace(id) == "" || strings.TrimSpace(title) == "" || strings.TrimSpace(author) == "" {
		return failure(ErrInvalidInput, "")
	}
	created, err := lm.ledger.AddBook(id, title, author, copies)
	if err != nil {
		return failure(err, "")
	}
	if created {
		return Result{OK: true, Message: "Book added successfully."}
	}
	return Result{OK: true, Message: fmt.Sprintf("Added %d more copies to existing book ID %s.", copies, strings.TrimSpace(id))}
}

// HasBook reports whether the ID is in the catalog. Callers use it before
// asking for delete confirmation.
func (lm *LibraryManager) HasBook(id string) (bool, error) {
	_, err := lm.ledger.Book(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// DeleteBook removes the book. The caller must have confirmed with the user.
func (lm *LibraryManager) DeleteBook(id string) Result {
	if err := lm.ledger.DeleteBook(id); err != nil {
		return failure(err, "")
	}
	return Result{OK: true, Message: "Book removed successfully."}
}

// ------------------ Circulation ------------------

func (lm *LibraryManager) IssueBook(id, borrower, contact string) Result {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(borrower) == "" || strings.TrimSpace(contact) == "" {
		return Result{Message: "Please enter Book ID, USN and Email to issue a book."}
	}
	loan, err := lm.ledger.IssueBook(id, borrower, contact)
	if err != nil {
		return failure(err, borrower)
	}
	return Result{OK: true, Message: fmt.Sprintf("Book issued to %s.\nDue date: %s", loan.BorrowerID, loan.DueDate)}
}

func (lm *LibraryManager) ReturnBook(id, borrower string) Result {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(borrower) == "" {
		return Result{Message: "Please enter Book ID and USN to return a book."}
	}
	fine, err := lm.ledger.ReturnBook(id, borrower)
	if err != nil {
		return failure(err, borrower)
	}
	if fine > 0 {
		return Result{OK: true, Message: fmt.Sprintf("Book returned.\nFine due: %d", fine)}
	}
	return Result{OK: true, Message: "Book returned on time. No fine."}
}

// ------------------ Listing ------------------

func (lm *LibraryManager) Books() (iter.Seq[Line], error) { return lm.ledger.List() }

func (lm *LibraryManager) Search(q string) (iter.Seq[Line], error) {
	return lm.ledger.Search(q)
}

// ------------------ Utilities ------------------

func parseCopies(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// failure maps a ledger error to the message shown to the user.
func failure(err error, borrower string) Result {
	borrower = strings.TrimSpace(borrower)
	var msg string
	switch {
	case errors.Is(err, ErrInvalidInput):
		msg = "Please fill all fields correctly (copies > 0)."
	case errors.Is(err, ErrNotFound):
		msg = "Book ID not found."
	case errors.Is(err, ErrNoAvailability):
		msg = "No available copies to issue."
	case errors.Is(err, ErrDuplicateLoan):
		msg = fmt.Sprintf("User %s has already issued this book.", borrower)
	case errors.Is(err, ErrRecordNotFound):
		msg = fmt.Sprintf("No record found of %s issuing this book.", borrower)
	case errors.Is(err, ErrCorruptLedger):
		msg = fmt.Sprintf("Ledger file is corrupt: %v", err)
	default:
		msg = fmt.Sprintf("Error: %v", err)
	}
	return Result{Message: msg}
}

const (
	ansiRed   = "\033[31m"
	ansiReset = "\033[0m"
)

// PrettyLine formats a listing line. Overdue loans are shown in red when
// color is true and with an [OVERDUE] marker otherwise.
func PrettyLine(l Line, color bool) string {
	if !l.Overdue {
		return l.Text
	}
	if color {
		return ansiRed + l.Text + ansiReset
	}
	return l.Text + "  [OVERDUE]"
}
