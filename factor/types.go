/*
Package factor implements the invoice-factoring ledger.

PURPOSE:
  This package contains the core state machine for invoice factoring:
  invoices are minted by their owner and later funded (purchased) by a
  third party who advances payment in exchange for the receivable.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A non-negative monetary value in the smallest currency unit
  - Identity: An opaque, host-supplied account identifier
  - Invoice: The central record, keyed by a ledger-assigned id

DESIGN PRINCIPLES:
  1. Immutability: Once minted, an invoice's id, owner, amount, and
     reference never change. Only the Funded flag may flip, exactly once.
  2. Precision: Uses decimal.Decimal so amounts of any magnitude are exact.
  3. Host Capabilities: Identity and value transfer come from an injected
     Host interface - the ledger never guesses who is calling.

USAGE:
  ledger := factor.NewLedger(store, sink)
  id, err := ledger.Mint(ctx, host, factor.NewAmount(1000), "QmHash...")

SEE ALSO:
  - ledger.go: Mint/Fund/Get state machine
  - store.go: Persistence interface
  - events.go: Minted/Funded notification sinks
*/
package factor

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Monetary value in the smallest currency unit
// =============================================================================

// Amount is a monetary value denominated in the smallest unit of the
// settlement currency. Valid amounts are non-negative integers; the
// decimal backing means values far beyond int64 range stay exact.
type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value int64) Amount {
	return Amount{Value: decimal.NewFromInt(value)}
}

// ParseAmount parses a base-10 integer string into an Amount.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsInteger() {
		return Amount{}, fmt.Errorf("invalid amount %q: not a whole number of smallest units", s)
	}
	return Amount{Value: d}, nil
}

func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) LessThan(b Amount) bool    { return a.Value.LessThan(b.Value) }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) String() string            { return a.Value.String() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Identity is a host-supplied account identifier. The ledger treats it as
// opaque ground truth: it never parses, derives, or fabricates one.
type Identity string

// InvoiceID is assigned by the ledger at mint time. Ids are the sequence
// 0, 1, 2, ... in mint order, with no gaps and no reuse.
type InvoiceID uint64

// =============================================================================
// INVOICE - The central record
// =============================================================================

// Invoice is a receivable tracked by the ledger.
//
// INVARIANTS:
//   - ID, Owner, Amount, Reference are frozen at mint.
//   - Funded transitions false -> true at most once, never back.
//   - Records are never deleted; the ledger is append-only apart from the
//     single flag flip.
type Invoice struct {
	ID        InvoiceID
	Owner     Identity
	Amount    Amount
	Reference string // content-addressed pointer to the off-ledger document
	Funded    bool
}
