package library

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RawBook is a book object as found on disk, in either the current shape
// or the legacy single-loan shape (copies, last_issued, due_date, issued_to).
// Pointers tell a missing field apart from a zero value.
type RawBook struct {
	Title           string        `json:"title"`
	Author          string        `json:"author"`
	TotalCopies     *int          `json:"total_copies"`
	AvailableCopies *int          `json:"available_copies"`
	IssuedCopies    *[]LoanRecord `json:"issued_copies"`

	Copies *int `json:"copies"`
}

func (sb RawBook) legacy() bool {
	return sb.TotalCopies == nil || sb.AvailableCopies == nil || sb.IssuedCopies == nil
}

// Migrate converts a decoded document into the current shape. Any book
// missing one of total_copies, available_copies or issued_copies is rebuilt
// from its legacy copies count (1 when absent) with an empty loan list; the
// old single-loan fields are dropped and their loan is not carried forward.
// changed reports whether any book needed rewriting.
func Migrate(raw map[string]RawBook) (doc Document, changed bool) {
	doc = make(Document, len(raw))
	for id, sb := range raw {
		b := &BookRecord{ID: id, Title: sb.Title, Author: sb.Author}
		if sb.legacy() {
			copies := 1
			if sb.Copies != nil {
				copies = *sb.Copies
			}
			b.TotalCopies = copies
			b.AvailableCopies = copies
			b.Loans = []LoanRecord{}
			changed = true
		} else {
			b.TotalCopies = *sb.TotalCopies
			b.AvailableCopies = *sb.AvailableCopies
			b.Loans = *sb.IssuedCopies
			if b.Loans == nil {
				b.Loans = []LoanRecord{}
			}
		}
		doc[id] = b
	}
	return doc, changed
}

// MigrateJSON decodes a stored document and migrates it. Blank input is an
// empty ledger; anything that does not parse is ErrCorruptLedger.
func MigrateJSON(data []byte) (Document, bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, false, nil
	}
	var raw map[string]RawBook
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
	}
	doc, changed := Migrate(raw)
	return doc, changed, nil
}

// encodeDocument renders doc in the on-disk shape, indented the way the
// ledger file has always been written.
func encodeDocument(doc Document) ([]byte, error) {
	for _, b := range doc {
		if b.Loans == nil {
			b.Loans = []LoanRecord{}
		}
	}
	if doc == nil {
		doc = Document{}
	}
	return json.MarshalIndent(doc, "", "    ")
}
