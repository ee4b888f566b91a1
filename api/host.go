/*
host.go - Request-scoped factor.Host built by the HTTP front-end

PURPOSE:
  The ledger consumes platform capabilities through factor.Host. Over
  HTTP those capabilities come from the request:
  - Caller:        the X-Caller header, asserted by the trusted gateway
  - AttachedValue: the value the gateway escrowed for this call
  - Transfer:      recorded as a durable payout row, the bridge to the
                   settlement rail

  A host is built per request and discarded. The attached value is fixed
  when the host is built and cannot change mid-call.

SEE ALSO:
  - factor/host.go: The capability contract
  - handlers.go: Where hosts are constructed
*/
package api

import (
	"context"

	"github.com/flowfi/factor-engine/factor"
	"github.com/flowfi/factor-engine/store/sqlite"
)

// CallerHeader carries the authenticated caller identity. Platform-level
// authentication happens upstream; the ledger treats the header's claim
// as ground truth.
const CallerHeader = "X-Caller"

// requestHost adapts one HTTP request into the ledger's Host capability.
type requestHost struct {
	ctx       context.Context
	caller    factor.Identity
	escrow    factor.Amount
	invoiceID factor.InvoiceID
	store     *sqlite.Store
}

func (h *requestHost) Caller() factor.Identity      { return h.caller }
func (h *requestHost) AttachedValue() factor.Amount { return h.escrow }

func (h *requestHost) Transfer(to factor.Identity, amount factor.Amount) error {
	return h.store.RecordPayout(h.ctx, uint64(h.invoiceID), to, amount)
}
