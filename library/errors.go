package library

import "errors"

// Errors returned by ledger operations. Callers match them with errors.Is;
// the wrapped message carries the offending ID.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("book not found")
	ErrNoAvailability = errors.New("no available copies")
	ErrDuplicateLoan  = errors.New("borrower already holds this book")
	ErrRecordNotFound = errors.New("no matching loan record")

	// ErrCorruptLedger is returned by a store whose file cannot be parsed.
	ErrCorruptLedger = errors.New("ledger file is corrupt")
)
