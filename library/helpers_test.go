package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clock is a settable time source for WithClock.
type clock struct{ t time.Time }

func newClock() *clock {
	return &clock{t: time.Date(2026, 10, 17, 15, 30, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time   { return c.t }
func (c *clock) advance(days int) { c.t = c.t.AddDate(0, 0, days) }

func tempLedger(t *testing.T) (*Ledger, *clock, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library_gui.json")
	c := newClock()
	l, err := NewLedger(NewJSONStore(path), WithClock(c.now))
	require.NoError(t, err)
	return l, c, path
}

func collect(t *testing.T, l *Ledger) []Line {
	t.Helper()
	seq, err := l.List()
	require.NoError(t, err)
	var lines []Line
	for line := range seq {
		lines = append(lines, line)
	}
	return lines
}

func requireConsistent(t *testing.T, l *Ledger) {
	t.Helper()
	books, err := l.Books()
	require.NoError(t, err)
	for _, b := range books {
		require.NoError(t, b.Consistent())
	}
}
