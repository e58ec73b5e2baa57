package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"USN001", "usn001"},
		{"  Mixed Case ", "mixed case"},
		{"STRASSE", "strasse"},
		{"Straße", "strasse"},
		{"Café", "café"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FoldKey(tt.in), "FoldKey(%q)", tt.in)
	}
}

func TestBorrowerMatchIsCaseInsensitive(t *testing.T) {
	b := &BookRecord{Loans: []LoanRecord{{BorrowerID: "Usn-7"}, {BorrowerID: "usn-8"}}}
	assert.Equal(t, 0, b.loanIndex("USN-7"))
	assert.Equal(t, 1, b.loanIndex(" Usn-8 "))
	assert.Equal(t, -1, b.loanIndex("usn-9"))
}
