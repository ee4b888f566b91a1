/*
events.go - One-way notification log for completed operations

PURPOSE:
  Every successful mint and fund emits a notification describing what
  happened. The stream is append-only and strictly one-way: indexers and
  UIs subscribe to it, the ledger never reads it back and never depends
  on whether anything is listening.

ORDERING CONTRACT:
  State mutation happens BEFORE emission, so an observer reacting to a
  notification always sees consistent ledger state.

FAILURE CONTRACT:
  Emission is fire-and-forget. A sink must not fail the ledger call;
  sinks that can error internally (e.g. a database-backed one) log and
  swallow.

SEE ALSO:
  - ledger.go: Emission points
  - store/sqlite: Durable sink implementation
*/
package factor

import (
	"context"
	"sync"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// Event is a notification about a completed ledger operation.
type Event interface {
	// Kind returns a stable name for the event type.
	Kind() string
}

// Minted is emitted after a new invoice is inserted and the counter advanced.
type Minted struct {
	ID        InvoiceID
	Owner     Identity
	Amount    Amount
	Reference string
}

func (Minted) Kind() string { return "minted" }

// Funded is emitted after an invoice is funded and value forwarded to its
// owner. Amount is the full attached value, which may exceed the invoice's
// face amount.
type Funded struct {
	ID     InvoiceID
	Funder Identity
	Amount Amount
}

func (Funded) Kind() string { return "funded" }

// =============================================================================
// SINKS
// =============================================================================

// EventSink receives notifications. Emit must not block the ledger on
// downstream consumers and must not fail the surrounding call.
type EventSink interface {
	Emit(ctx context.Context, e Event)
}

// NopSink discards everything. The ledger works fine with no observers.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}

// FanOut forwards each event to every sink in order.
type FanOut []EventSink

func (f FanOut) Emit(ctx context.Context, e Event) {
	for _, s := range f {
		s.Emit(ctx, e)
	}
}

// =============================================================================
// MEMORY LOG - Ordered in-process event log
// =============================================================================

// Log is an in-memory append-only event log. Useful as the subscription
// point for in-process indexers and as the assertion surface in tests.
type Log struct {
	mu     sync.RWMutex
	events []Event
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Emit(_ context.Context, e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Events returns the emitted events in emission order.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of emitted events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
