package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the ledger in a single SQLite file: one row per book and
// one row per active loan. It is an alternative to JSONStore with the same
// whole-document load/save contract.
type SQLiteStore struct {
	db *sql.DB

	insertBookStmt *sql.Stmt
	insertLoanStmt *sql.Stmt
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases prepared statements and closes the DB.
func (s *SQLiteStore) Close() error {
	if s.insertBookStmt != nil {
		s.insertBookStmt.Close()
	}
	if s.insertLoanStmt != nil {
		s.insertLoanStmt.Close()
	}
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            total_copies INTEGER NOT NULL,
            available_copies INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS loans (
            book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            usn TEXT NOT NULL,
            email TEXT NOT NULL,
            issue_date TEXT NOT NULL,
            due_date TEXT NOT NULL,
            PRIMARY KEY (book_id, position)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (s *SQLiteStore) prepareStatements() error {
	var err error
	if s.insertBookStmt, err = s.db.Prepare(`INSERT INTO books(id,title,author,total_copies,available_copies) VALUES(?,?,?,?,?)`); err != nil {
		return err
	}
	if s.insertLoanStmt, err = s.db.Prepare(`INSERT INTO loans(book_id,position,usn,email,issue_date,due_date) VALUES(?,?,?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Whole-document load/save
// ---------------------------------------------------------------------------

// Load reads every book and its loans in issue order.
func (s *SQLiteStore) Load() (Document, error) {
	rows, err := s.db.Query(`SELECT id,title,author,total_copies,available_copies FROM books`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	doc := Document{}
	for rows.Next() {
		b := &BookRecord{Loans: []LoanRecord{}}
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.TotalCopies, &b.AvailableCopies); err != nil {
			return nil, err
		}
		doc[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	loanRows, err := s.db.Query(`SELECT book_id,usn,email,issue_date,due_date FROM loans ORDER BY book_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer loanRows.Close()

	for loanRows.Next() {
		var bookID, issued, due string
		var lr LoanRecord
		if err := loanRows.Scan(&bookID, &lr.BorrowerID, &lr.Contact, &issued, &due); err != nil {
			return nil, err
		}
		if lr.IssueDate, err = ParseDate(issued); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
		}
		if lr.DueDate, err = ParseDate(due); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
		}
		b, ok := doc[bookID]
		if !ok {
			return nil, fmt.Errorf("%w: loan for unknown book %s", ErrCorruptLedger, bookID)
		}
		b.Loans = append(b.Loans, lr)
	}
	return doc, loanRows.Err()
}

// Save replaces the stored ledger with doc in one transaction.
func (s *SQLiteStore) Save(doc Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM loans`); err != nil {
		return fmt.Errorf("clear loans: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM books`); err != nil {
		return fmt.Errorf("clear books: %w", err)
	}

	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	insertBook := tx.Stmt(s.insertBookStmt)
	insertLoan := tx.Stmt(s.insertLoanStmt)
	for _, id := range ids {
		b := doc[id]
		if _, err := insertBook.Exec(id, b.Title, b.Author, b.TotalCopies, b.AvailableCopies); err != nil {
			return fmt.Errorf("insert book %s: %w", id, err)
		}
		for i, lr := range b.Loans {
			if _, err := insertLoan.Exec(id, i, lr.BorrowerID, lr.Contact, lr.IssueDate.String(), lr.DueDate.String()); err != nil {
				return fmt.Errorf("insert loan %s/%s: %w", id, lr.BorrowerID, err)
			}
		}
	}
	return tx.Commit()
}
