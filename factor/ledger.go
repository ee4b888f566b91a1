/*
ledger.go - The mint -> fund state machine

PURPOSE:
  The Ledger owns all invoice records and enforces the factoring
  lifecycle: an owner mints an invoice, a third party funds it exactly
  once, value flows to the owner, and every completed operation is
  announced on the event sink.

CRITICAL INVARIANTS:
  1. Ids are assigned 0, 1, 2, ... in mint order. No gaps, no reuse.
  2. Funded is monotonic: false -> true is the only transition.
  3. A failed precondition mutates nothing.
  4. State is persisted BEFORE value moves and BEFORE events fire.

WHY FLIP-BEFORE-TRANSFER?
  The Funded flag is persisted before the transfer runs. If the host
  retries the transfer step, the ledger can never report the invoice as
  fundable a second time - the flag flip is the linearization point.

CONCURRENCY:
  The original platform serializes calls at its transaction boundary.
  Outside that platform nothing does, so a single mutex guards Mint and
  Fund to keep check-and-flip atomic. Get takes no lock beyond what the
  store provides; it reads a single record.

OVERPAYMENT:
  Fund forwards the FULL attached value to the owner, not the invoice's
  face amount. Observed upstream behavior, kept as-is rather than capped
  or refunded.

SEE ALSO:
  - store.go: Persistence contract
  - host.go: Caller identity and value transfer
  - events.go: Minted/Funded notifications
*/
package factor

import (
	"context"
	"fmt"
	"sync"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger enforces the invoice factoring lifecycle over a Store.
// It is the sole writer of both the invoice mapping and the counter.
type Ledger struct {
	mu     sync.Mutex
	store  Store
	events EventSink
}

// NewLedger creates a ledger over store, announcing operations on events.
// Pass NopSink{} if nothing subscribes; the ledger never depends on
// observers being present.
func NewLedger(store Store, events EventSink) *Ledger {
	if events == nil {
		events = NopSink{}
	}
	return &Ledger{store: store, events: events}
}

// =============================================================================
// MINT
// =============================================================================

// Mint creates a new invoice owned by the caller and returns its id.
//
// Zero and implausibly large amounts are accepted: business-rule
// validation belongs to front-ends, not the ledger. Negative amounts are
// outside the input domain and rejected with ErrNegativeAmount.
func (l *Ledger) Mint(ctx context.Context, host Host, amount Amount, reference string) (InvoiceID, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}

	inv := Invoice{
		ID:        InvoiceID(n),
		Owner:     host.Caller(),
		Amount:    amount,
		Reference: reference,
		Funded:    false,
	}

	if err := l.store.Put(ctx, inv); err != nil {
		return 0, fmt.Errorf("insert invoice %d: %w", inv.ID, err)
	}
	if err := l.store.SetCount(ctx, n+1); err != nil {
		return 0, fmt.Errorf("advance counter: %w", err)
	}

	// Mutation is complete; observers of the event see consistent state.
	l.events.Emit(ctx, Minted{
		ID:        inv.ID,
		Owner:     inv.Owner,
		Amount:    inv.Amount,
		Reference: inv.Reference,
	})

	return inv.ID, nil
}

// =============================================================================
// FUND
// =============================================================================

// Fund purchases invoice id with the value attached to the current call.
//
// Preconditions, checked in order, each its own failure mode:
//  1. the id resolves to a record      - else ErrInvoiceNotFound
//  2. the record is not yet funded     - else ErrAlreadyFunded
//  3. attached value >= invoice amount - else InsufficientFundsError
//
// On success the Funded flag is persisted, the full attached value is
// transferred to the owner, and a Funded notification is emitted. A
// failed precondition mutates nothing.
func (l *Ledger) Fund(ctx context.Context, host Host, id InvoiceID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	inv, err := l.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load invoice %d: %w", id, err)
	}
	if inv == nil {
		return ErrInvoiceNotFound
	}
	if inv.Funded {
		return ErrAlreadyFunded
	}

	attached := host.AttachedValue()
	if attached.LessThan(inv.Amount) {
		return &InsufficientFundsError{ID: id, Required: inv.Amount, Attached: attached}
	}

	// Flip and persist before moving value. See the header note on the
	// linearization point.
	inv.Funded = true
	if err := l.store.Put(ctx, *inv); err != nil {
		return fmt.Errorf("mark invoice %d funded: %w", id, err)
	}

	if err := host.Transfer(inv.Owner, attached); err != nil {
		return fmt.Errorf("transfer to %s: %w", inv.Owner, err)
	}

	l.events.Emit(ctx, Funded{
		ID:     id,
		Funder: host.Caller(),
		Amount: attached,
	})

	return nil
}

// =============================================================================
// READ
// =============================================================================

// Get returns the invoice for id, or nil if no such record exists.
// Pure read: no failure modes beyond storage errors, no side effects.
func (l *Ledger) Get(ctx context.Context, id InvoiceID) (*Invoice, error) {
	return l.store.Get(ctx, id)
}

// List returns every invoice ordered by id.
func (l *Ledger) List(ctx context.Context) ([]Invoice, error) {
	return l.store.List(ctx)
}
