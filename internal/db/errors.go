package db

import "errors"

// Sentinel errors for store operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrClosed      = errors.New("db: store closed")
)

// Op constants name the failed operation for error context. Redis command
// names are reused by the file store.
const (
	OpPing  = "PING"
	OpGet   = "GET"
	OpSet   = "SET"
	OpLock  = "LOCK"
	OpClose = "CLOSE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return e.Op + " " + e.Key + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
