package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no row matches the lookup.
var ErrNotFound = errors.New("not found")

// ErrInsufficientPoints is returned by DebitPoints when the balance would go
// negative. The balance is left untouched.
var ErrInsufficientPoints = errors.New("insufficient points")

// ErrStoreUnavailable wraps infrastructure failures (connection refused,
// timeouts). Callers must not auto-retry mutating operations on it.
var ErrStoreUnavailable = errors.New("store unavailable")

// DuplicateError reports a unique-index violation and names the offending
// field as the client knows it (username, email, stream_key).
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

// IsDuplicate reports whether err is a unique-index violation, and if so for
// which field.
func IsDuplicate(err error) (string, bool) {
	var de *DuplicateError
	if errors.As(err, &de) {
		return de.Field, true
	}
	return "", false
}
