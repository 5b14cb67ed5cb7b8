// Package errs holds the error taxonomy shared by the store, ledger and RPC layers.
//
// Callers match with errors.Is; every error returned across a layer boundary wraps
// exactly one of these sentinels and carries a message specific to the failure.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input: empty names, non-positive amounts, bad splits.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced friendship, group, expense or user that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateFriendship is returned when an unordered pair is already friends.
	ErrDuplicateFriendship = errors.New("duplicate friendship")

	// ErrUserNotFound is returned when a candidate phone is not a registered user.
	ErrUserNotFound = errors.New("user not found")

	// ErrSplitMismatch is returned when custom splits do not sum to the expense total.
	// It is also a validation error.
	ErrSplitMismatch = fmt.Errorf("%w: split mismatch", ErrValidation)

	// ErrStoreUnavailable wraps transient I/O failures of the backing store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrForbidden is returned when the caller is not allowed to act on a record.
	ErrForbidden = errors.New("forbidden")
)

// Validation returns an ErrValidation carrying a specific message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Unavailable wraps a store I/O failure so that it matches ErrStoreUnavailable
// while keeping the underlying cause.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
