package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*LibraryManager, *clock) {
	t.Helper()
	l, c, _ := tempLedger(t)
	mgr := NewManagerForLedger(l)
	t.Cleanup(func() { mgr.Close() })
	return mgr, c
}

func TestManagerMessages(t *testing.T) {
	mgr, c := newManager(t)

	assert.Equal(t, Result{OK: true, Message: "Book added successfully."},
		mgr.AddBook("B1", "Dune", "Herbert", "1"))
	assert.Equal(t, Result{OK: true, Message: "Added 2 more copies to existing book ID B1."},
		mgr.AddBook("B1", "Dune", "Herbert", "2"))

	assert.Equal(t, Result{OK: true, Message: "Book issued to U1.\nDue date: 2026-10-24"},
		mgr.IssueBook("B1", "U1", "u1@x.com"))
	assert.Equal(t, Result{Message: "User u1 has already issued this book."},
		mgr.IssueBook("B1", "u1", "u1@x.com"))
	assert.Equal(t, Result{Message: "Book ID not found."},
		mgr.IssueBook("B9", "U1", "u1@x.com"))
	assert.Equal(t, Result{Message: "Please enter Book ID, USN and Email to issue a book."},
		mgr.IssueBook("B1", "U2", ""))

	assert.Equal(t, Result{Message: "No record found of U7 issuing this book."},
		mgr.ReturnBook("B1", "U7"))
	assert.Equal(t, Result{Message: "Please enter Book ID and USN to return a book."},
		mgr.ReturnBook("", "U1"))

	c.advance(10)
	assert.Equal(t, Result{OK: true, Message: "Book returned.\nFine due: 30"},
		mgr.ReturnBook("B1", "U1"))

	_ = mgr.IssueBook("B1", "U2", "u2@x.com")
	assert.Equal(t, Result{OK: true, Message: "Book returned on time. No fine."},
		mgr.ReturnBook("B1", "U2"))

	assert.Equal(t, Result{OK: true, Message: "Book removed successfully."}, mgr.DeleteBook("B1"))
	assert.Equal(t, Result{Message: "Book ID not found."}, mgr.DeleteBook("B1"))
}

func TestManagerNoAvailability(t *testing.T) {
	mgr, _ := newManager(t)
	require.True(t, mgr.AddBook("B1", "Dune", "Herbert", "1").OK)
	require.True(t, mgr.IssueBook("B1", "U1", "u1@x.com").OK)
	assert.Equal(t, Result{Message: "No available copies to issue."}, mgr.IssueBook("B1", "U2", "u2@x.com"))
}

func TestManagerAddBookValidation(t *testing.T) {
	mgr, _ := newManager(t)
	for _, copies := range []string{"", "0", "-1", "+3", "2.5", "three", "１"} {
		res := mgr.AddBook("B1", "Dune", "Herbert", copies)
		assert.False(t, res.OK, "copies %q", copies)
		assert.Equal(t, "Please fill all fields correctly (copies > 0).", res.Message)
	}
	assert.False(t, mgr.AddBook("B1", "", "Herbert", "1").OK)

	ok, err := mgr.HasBook("B1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerListing(t *testing.T) {
	mgr, _ := newManager(t)
	require.True(t, mgr.AddBook("B1", "Dune", "Herbert", "1").OK)

	seq, err := mgr.Books()
	require.NoError(t, err)
	var got []string
	for l := range seq {
		got = append(got, l.Text)
	}
	assert.Equal(t, []string{"B1 | Dune by Herbert | Total: 1 | Available: 1"}, got)

	seq, err = mgr.Search("nothing")
	require.NoError(t, err)
	for l := range seq {
		assert.Equal(t, LineNotice, l.Kind)
	}
}

func TestNewLibraryManagerBackends(t *testing.T) {
	for _, backend := range []string{BackendJSON, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Backend = backend
			cfg.File = filepath.Join(t.TempDir(), "ledger."+backend)

			mgr, err := NewLibraryManager(cfg, nil)
			require.NoError(t, err)
			require.True(t, mgr.AddBook("B1", "Dune", "Herbert", "2").OK)
			require.NoError(t, mgr.Close())

			mgr, err = NewLibraryManager(cfg, nil)
			require.NoError(t, err)
			defer mgr.Close()
			ok, err := mgr.HasBook("B1")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestPrettyLine(t *testing.T) {
	plain := Line{Kind: LineLoan, Text: "   Issued to: U1"}
	assert.Equal(t, "   Issued to: U1", PrettyLine(plain, true))

	late := Line{Kind: LineLoan, Text: "   Issued to: U1", Overdue: true}
	assert.Equal(t, "   Issued to: U1  [OVERDUE]", PrettyLine(late, false))
	assert.Equal(t, "\033[31m   Issued to: U1\033[0m", PrettyLine(late, true))
}
