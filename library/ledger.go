package library

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ledger owns the catalog and its loans. It holds no state between calls:
// every operation loads the whole document from its store, mutates it and,
// only if the operation succeeded, saves it back.
type Ledger struct {
	store          Store
	now            func() time.Time
	log            *slog.Logger
	resetOnCorrupt bool
	migrated       bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now, which decides issue dates, fines and overdue flags.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.log = logger }
}

// WithResetOnCorrupt makes an unparseable store read as an empty ledger
// instead of failing with ErrCorruptLedger.
func WithResetOnCorrupt(reset bool) Option {
	return func(l *Ledger) { l.resetOnCorrupt = reset }
}

// NewLedger wraps store and, when the store supports it, migrates documents
// written in the legacy shape before first use.
func NewLedger(store Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store: store,
		now:   time.Now,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}

	if m, ok := store.(Migrator); ok {
		changed, err := m.Migrate()
		switch {
		case errors.Is(err, ErrCorruptLedger) && l.resetOnCorrupt:
			l.log.Warn("skipping migration of corrupt ledger", "error", err)
		case err != nil:
			return nil, err
		case changed:
			l.migrated = true
			l.log.Info("migrated ledger to current format")
		}
	}
	return l, nil
}

// Migrated reports whether opening the ledger rewrote a legacy document.
func (l *Ledger) Migrated() bool { return l.migrated }

// Today is the current calendar day according to the ledger's clock.
func (l *Ledger) Today() Date { return DateOf(l.now()) }

func (l *Ledger) load(log *slog.Logger) (Document, error) {
	doc, err := l.store.Load()
	if errors.Is(err, ErrCorruptLedger) && l.resetOnCorrupt {
		log.Warn("ledger is corrupt, starting from an empty ledger", "error", err)
		return Document{}, nil
	}
	if err != nil {
		return nil, err
	}
	for id, b := range doc {
		b.ID = id
	}
	return doc, nil
}

// update runs fn against a freshly loaded document and saves it if fn succeeds.
func (l *Ledger) update(op string, fn func(Document) error) error {
	log := l.log.With("op", op, "op_id", uuid.NewString())
	doc, err := l.load(log)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		log.Debug("operation rejected", "error", err)
		return err
	}
	if err := l.store.Save(doc); err != nil {
		log.Error("save failed", "error", err)
		return fmt.Errorf("save ledger: %w", err)
	}
	log.Debug("ledger saved", "books", len(doc))
	return nil
}

// AddBook creates the book, or adds copies to it when the ID already exists.
// An existing record keeps its title and author. created reports which case applied.
func (l *Ledger) AddBook(id, title, author string, copies int) (created bool, err error) {
	id, title, author = strings.TrimSpace(id), strings.TrimSpace(title), strings.TrimSpace(author)
	if id == "" || title == "" || author == "" {
		return false, fmt.Errorf("%w: id, title and author are required", ErrInvalidInput)
	}
	if copies <= 0 {
		return false, fmt.Errorf("%w: copies must be positive, got %d", ErrInvalidInput, copies)
	}

	err = l.update("add", func(doc Document) error {
		if b, ok := doc[id]; ok {
			b.TotalCopies += copies
			b.AvailableCopies += copies
			return nil
		}
		doc[id] = &BookRecord{
			ID:              id,
			Title:           title,
			Author:          author,
			TotalCopies:     copies,
			AvailableCopies: copies,
			Loans:           []LoanRecord{},
		}
		created = true
		return nil
	})
	return created, err
}

// IssueBook lends one copy of the book to borrower for LoanPeriodDays.
func (l *Ledger) IssueBook(id, borrower, contact string) (LoanRecord, error) {
	id, borrower, contact = strings.TrimSpace(id), strings.TrimSpace(borrower), strings.TrimSpace(contact)
	if id == "" || borrower == "" || contact == "" {
		return LoanRecord{}, fmt.Errorf("%w: book id, borrower and contact are required", ErrInvalidInput)
	}

	var loan LoanRecord
	err := l.update("issue", func(doc Document) error {
		b, ok := doc[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if b.AvailableCopies <= 0 {
			return fmt.Errorf("%w: %s", ErrNoAvailability, id)
		}
		if b.loanIndex(borrower) >= 0 {
			return fmt.Errorf("%w: %s has %s", ErrDuplicateLoan, borrower, id)
		}

		today := l.Today()
		loan = LoanRecord{
			BorrowerID: borrower,
			Contact:    contact,
			IssueDate:  today,
			DueDate:    today.AddDays(LoanPeriodDays),
		}
		b.Loans = append(b.Loans, loan)
		b.AvailableCopies--
		return nil
	})
	if err != nil {
		return LoanRecord{}, err
	}
	return loan, nil
}

// ReturnBook closes the borrower's loan on the book and returns the fine owed.
func (l *Ledger) ReturnBook(id, borrower string) (fine int, err error) {
	id, borrower = strings.TrimSpace(id), strings.TrimSpace(borrower)
	if id == "" || borrower == "" {
		return 0, fmt.Errorf("%w: book id and borrower are required", ErrInvalidInput)
	}

	err = l.update("return", func(doc Document) error {
		b, ok := doc[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		i := b.loanIndex(borrower)
		if i < 0 {
			return fmt.Errorf("%w: %s on %s", ErrRecordNotFound, borrower, id)
		}

		fine = b.Loans[i].Fine(l.Today())
		b.Loans = append(b.Loans[:i], b.Loans[i+1:]...)
		b.AvailableCopies++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return fine, nil
}

// DeleteBook removes the book and all of its loans. Confirmation is the caller's job.
func (l *Ledger) DeleteBook(id string) error {
	id = strings.TrimSpace(id)
	return l.update("delete", func(doc Document) error {
		if _, ok := doc[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		delete(doc, id)
		return nil
	})
}

// Book returns a copy of a single record.
func (l *Ledger) Book(id string) (BookRecord, error) {
	doc, err := l.load(l.log)
	if err != nil {
		return BookRecord{}, err
	}
	b, ok := doc[strings.TrimSpace(id)]
	if !ok {
		return BookRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *b, nil
}

// Books returns every record ordered by title.
func (l *Ledger) Books() ([]*BookRecord, error) {
	doc, err := l.load(l.log)
	if err != nil {
		return nil, err
	}
	return doc.Sorted(), nil
}

// List renders the whole catalog from a snapshot taken now. Ranging over the
// result more than once yields the same lines.
func (l *Ledger) List() (iter.Seq[Line], error) {
	doc, err := l.load(l.log)
	if err != nil {
		return nil, err
	}
	return Listing(doc, l.Today()), nil
}

// Search renders the books whose title or author contains query, ignoring case.
func (l *Ledger) Search(query string) (iter.Seq[Line], error) {
	doc, err := l.load(l.log)
	if err != nil {
		return nil, err
	}
	return SearchListing(doc, query, l.Today()), nil
}
