/*
host.go - Platform capabilities injected into each ledger call

PURPOSE:
  The original system runs inside a platform that knows who is calling,
  how much native value they escrowed with the call, and how to move
  that value. The ledger consumes those facts through the Host interface
  instead of binding to any particular runtime.

CAPABILITY INJECTION:
  A Host is scoped to ONE call. The HTTP front-end builds one per request;
  tests build one per scenario. The ledger treats Caller() as non-forgeable
  ground truth and never caches a Host across calls.

SEE ALSO:
  - ledger.go: The only consumer of Host
  - api/host.go: Request-scoped Host built by the HTTP front-end
*/
package factor

// Host supplies the platform capabilities for the current call.
type Host interface {
	// Caller returns the identity making the current call.
	Caller() Identity

	// AttachedValue returns the native value escrowed with the current
	// call. It is host-supplied, never a caller argument, so it cannot
	// be spoofed.
	AttachedValue() Amount

	// Transfer moves value from the call's escrow to a recipient.
	// Failure is fatal to the surrounding ledger call.
	Transfer(to Identity, amount Amount) error
}

// =============================================================================
// STATIC HOST - Fixed caller and escrow, for tests and tooling
// =============================================================================

// StaticHost is a Host with a fixed caller and escrowed value. Transfers
// are recorded in order so tests can assert on them.
type StaticHost struct {
	Identity Identity
	Escrow   Amount

	// TransferErr, when set, makes every Transfer fail with it.
	TransferErr error

	Transfers []Payment
}

// Payment is one recorded value movement.
type Payment struct {
	To     Identity
	Amount Amount
}

func (h *StaticHost) Caller() Identity      { return h.Identity }
func (h *StaticHost) AttachedValue() Amount { return h.Escrow }

func (h *StaticHost) Transfer(to Identity, amount Amount) error {
	if h.TransferErr != nil {
		return h.TransferErr
	}
	h.Transfers = append(h.Transfers, Payment{To: to, Amount: amount})
	return nil
}
