package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(t *testing.T) Document {
	t.Helper()
	issued, err := ParseDate("2026-10-10")
	require.NoError(t, err)
	return Document{
		"B1": {
			ID: "B1", Title: "Dune", Author: "Herbert", TotalCopies: 3, AvailableCopies: 1,
			Loans: []LoanRecord{
				{BorrowerID: "U1", Contact: "u1@x.com", IssueDate: issued, DueDate: issued.AddDays(7)},
				{BorrowerID: "U2", Contact: "u2@x.com", IssueDate: issued.AddDays(1), DueDate: issued.AddDays(8)},
			},
		},
		"B2": {ID: "B2", Title: "Emma", Author: "Austen", TotalCopies: 1, AvailableCopies: 1, Loans: []LoanRecord{}},
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "nested", "library_gui.json"))

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, doc, "a missing file is an empty ledger")

	want := sampleDocument(t)
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJSONStoreFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library_gui.json")
	require.NoError(t, NewJSONStore(path).Save(sampleDocument(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"B1": {"title": "Dune", "author": "Herbert", "total_copies": 3, "available_copies": 1,
			"issued_copies": [
				{"usn": "U1", "email": "u1@x.com", "issue_date": "2026-10-10", "due_date": "2026-10-17"},
				{"usn": "U2", "email": "u2@x.com", "issue_date": "2026-10-11", "due_date": "2026-10-18"}
			]},
		"B2": {"title": "Emma", "author": "Austen", "total_copies": 1, "available_copies": 1, "issued_copies": []}
	}`, string(data))
	assert.True(t, strings.HasPrefix(string(data), "{\n    \"B1\""), "indented with four spaces")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestJSONStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library_gui.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"B1": `), 0o644))

	_, err := NewJSONStore(path).Load()
	assert.ErrorIs(t, err, ErrCorruptLedger)
}

func TestLedgerRoundTripThroughStore(t *testing.T) {
	l, _, path := tempLedger(t)
	_, err := l.AddBook("B1", "Dune", "Herbert", 2)
	require.NoError(t, err)
	_, err = l.IssueBook("B1", "U1", "u1@x.com")
	require.NoError(t, err)
	before, err := l.Books()
	require.NoError(t, err)

	reopened, err := NewLedger(NewJSONStore(path))
	require.NoError(t, err)
	after, err := reopened.Books()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
