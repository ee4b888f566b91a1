/*
errors.go - Centralized error types for the factoring ledger

PURPOSE:
  All domain errors in one place. Exactly three conditions can fail a fund
  call, and each is a distinct sentinel so callers can branch with errors.Is.

ERROR CATEGORIES:
  1. Fund preconditions - InvoiceNotFound, AlreadyFunded, InsufficientFunds
  2. Input boundary     - NegativeAmount (mint only)

PROPAGATION POLICY:
  Every precondition violation aborts the whole call with no state
  mutation. Nothing is silently recovered; retries are the caller's
  responsibility and are safe because AlreadyFunded guards re-funding.

SEE ALSO:
  - ledger.go: Where these errors are raised
*/
package factor

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvoiceNotFound is returned when a referenced invoice id has no record.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrAlreadyFunded is returned when funding an invoice whose Funded flag
	// is already set. Funding is a one-shot transition.
	ErrAlreadyFunded = errors.New("invoice already funded")

	// ErrInsufficientFunds is returned when the value attached to a fund call
	// is strictly less than the invoice's face amount.
	ErrInsufficientFunds = errors.New("insufficient funds attached")

	// ErrNegativeAmount is returned when minting with a negative amount.
	// The amount type can represent negatives; invoices cannot.
	ErrNegativeAmount = errors.New("amount must be non-negative")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientFundsError reports how far short the attached value fell.
type InsufficientFundsError struct {
	ID       InvoiceID
	Required Amount
	Attached Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for invoice %d: required %s, attached %s (short %s)",
		e.ID, e.Required, e.Attached, e.Required.Sub(e.Attached))
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing invoice.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound)
}

// IsClientError returns true if the error is due to invalid caller input
// rather than a ledger or storage failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrAlreadyFunded) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrNegativeAmount)
}
