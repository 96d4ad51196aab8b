package ledger

import (
	"errors" // Sentinel errors
	"fmt"    // Error formatting

	"bank_ledger/internal/store" // Store conflict sentinel
)

var (
	// ErrInsufficientFunds is returned when a withdrawal would take the
	// balance past the configured overdraft limit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConflict is returned once the retry budget for concurrent
	// writers on the same account is spent.
	ErrConflict = store.ErrConflict
)

// ValidationError rejects a command before it reaches the store.
type ValidationError struct {
	Field  string // Offending field
	Reason string // Human-readable reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
