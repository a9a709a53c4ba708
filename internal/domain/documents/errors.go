package documents

import "errors"

// ErrNotFound indicates an unknown document id. Callers treat this as a
// normal "absent" signal, not a failure.
var ErrNotFound = errors.New("document not found")

// ErrStorage indicates an I/O failure in the blob or catalog layer.
// Always wrapped with operation context before it reaches a caller.
var ErrStorage = errors.New("storage error")
