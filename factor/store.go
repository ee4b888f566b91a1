/*
store.go - Persistence interface for invoices and the id counter

PURPOSE:
  Defines the storage the ledger needs: a mapping keyed by invoice id and
  a single counter holding the next id. Both must survive across calls.
  Different implementations can use SQLite or in-memory storage.

APPEND-ONLY CONTRACT:
  - No Delete exists. Records are never removed.
  - Put either inserts a new record or rewrites an existing one; the
    ledger only ever rewrites to flip the Funded flag.
  - The counter only moves forward, by exactly 1 per mint.

CONCURRENCY:
  Implementations must be safe for concurrent use, but they do NOT need
  to make read-modify-write sequences atomic: the Ledger serializes
  mint/fund under its own mutex.

IMPLEMENTATIONS:
  - factor/store:  In-memory, for tests and dev
  - store/sqlite:  Durable SQLite store

SEE ALSO:
  - ledger.go: The only writer
*/
package factor

import "context"

// Store persists the invoice mapping and the mint counter.
type Store interface {
	// Put inserts or rewrites the record keyed by inv.ID.
	Put(ctx context.Context, inv Invoice) error

	// Get returns the record for id, or nil if absent.
	Get(ctx context.Context, id InvoiceID) (*Invoice, error)

	// List returns every stored invoice ordered by id.
	List(ctx context.Context) ([]Invoice, error)

	// Count returns the next invoice id to assign.
	Count(ctx context.Context) (uint64, error)

	// SetCount persists the next invoice id.
	SetCount(ctx context.Context, n uint64) error
}
