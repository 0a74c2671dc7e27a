package voyr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the subscription core. Every operation surfaces its
// failure kind verbatim to the caller — nothing is retried internally and a
// failed operation leaves no partial state behind.
var (
	// Purchase / renewal errors
	ErrInvalidDuration      = errors.New("voyr: period count must be at least 1")
	ErrNoCredentialOwned    = errors.New("voyr: account owns no credential")
	ErrCreatorPaused        = errors.New("voyr: creator has paused purchases")
	ErrInsufficientApproval = errors.New("voyr: delegated allowance below cost")
	ErrArithmeticOverflow   = errors.New("voyr: arithmetic overflow")

	// Catalog errors
	ErrIndexOutOfRange = errors.New("voyr: plan index out of range")

	// Authorization errors
	ErrUnauthorized = errors.New("voyr: caller lacks the required role")

	// Query errors
	ErrUnknownCredential = errors.New("voyr: unknown or retired credential")
	ErrUnknownAccount    = errors.New("voyr: unknown account")

	// Payment medium errors
	ErrInvalidPaymentMedium = errors.New("voyr: payment medium reports zero issued units")
	ErrTransferFailed       = errors.New("voyr: delegated transfer failed")

	// Store errors
	ErrStoreClosed     = errors.New("voyr: store is closed")
	ErrMigrationFailed = errors.New("voyr: migration failed")
	ErrReceiptNotFound = errors.New("voyr: receipt not found")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("voyr: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownCredential) ||
		errors.Is(err, ErrUnknownAccount) ||
		errors.Is(err, ErrReceiptNotFound)
}

// IsAuthorizationError returns true if the error is a role-gate failure.
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsPaymentError returns true if the error originated in the funding check
// or the external transfer rather than the ledger itself.
func IsPaymentError(err error) bool {
	return errors.Is(err, ErrInsufficientApproval) ||
		errors.Is(err, ErrTransferFailed) ||
		errors.Is(err, ErrInvalidPaymentMedium)
}
