package factor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfi/factor-engine/factor"
	"github.com/flowfi/factor-engine/factor/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger(t *testing.T) (*factor.Ledger, *factor.Log) {
	t.Helper()
	log := factor.NewLog()
	return factor.NewLedger(store.NewMemory(), log), log
}

func hostFor(id string, escrow int64) *factor.StaticHost {
	return &factor.StaticHost{Identity: factor.Identity(id), Escrow: factor.NewAmount(escrow)}
}

// =============================================================================
// MINT
// =============================================================================

func TestMint_AssignsSequentialIDs(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	alice := hostFor("alice", 0)

	for want := uint64(0); want < 5; want++ {
		id, err := ledger.Mint(ctx, alice, factor.NewAmount(1000), "doc")
		require.NoError(t, err)
		assert.Equal(t, factor.InvoiceID(want), id, "ids are 0,1,2,... in mint order")
	}
}

func TestMint_RecordMatchesInputs(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	// Absent before any mint
	inv, err := ledger.Get(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, inv, "get before mint returns absent")

	id, err := ledger.Mint(ctx, hostFor("alice", 0), factor.NewAmount(1000), "doc1")
	require.NoError(t, err)

	inv, err = ledger.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, factor.Identity("alice"), inv.Owner)
	assert.True(t, inv.Amount.Equal(factor.NewAmount(1000)))
	assert.Equal(t, "doc1", inv.Reference)
	assert.False(t, inv.Funded, "invoices start unfunded")
}

func TestMint_ZeroAmountAccepted(t *testing.T) {
	// Business-rule validation is the caller's concern; zero is valid here.
	ledger, _ := newTestLedger(t)

	id, err := ledger.Mint(context.Background(), hostFor("alice", 0), factor.NewAmount(0), "zero")
	require.NoError(t, err)
	assert.Equal(t, factor.InvoiceID(0), id)
}

func TestMint_NegativeAmountRejected(t *testing.T) {
	ledger, log := newTestLedger(t)

	_, err := ledger.Mint(context.Background(), hostFor("alice", 0), factor.NewAmount(-1), "bad")
	assert.ErrorIs(t, err, factor.ErrNegativeAmount)
	assert.Zero(t, log.Len(), "no event for a failed mint")
}

func TestMint_EmitsMintedEvent(t *testing.T) {
	ledger, log := newTestLedger(t)

	_, err := ledger.Mint(context.Background(), hostFor("alice", 0), factor.NewAmount(1000), "doc1")
	require.NoError(t, err)

	events := log.Events()
	require.Len(t, events, 1)
	minted, ok := events[0].(factor.Minted)
	require.True(t, ok)
	assert.Equal(t, factor.InvoiceID(0), minted.ID)
	assert.Equal(t, factor.Identity("alice"), minted.Owner)
	assert.True(t, minted.Amount.Equal(factor.NewAmount(1000)))
	assert.Equal(t, "doc1", minted.Reference)
}

// =============================================================================
// FUND
// =============================================================================

func TestFund_ExactAmount_Succeeds(t *testing.T) {
	// GIVEN: alice minted an invoice for 1000
	// WHEN: bob funds it with exactly 1000 attached
	// THEN: the flag flips, 1000 moves to alice, Funded event names bob

	ledger, log := newTestLedger(t)
	ctx := context.Background()

	id, err := ledger.Mint(ctx, hostFor("alice", 0), factor.NewAmount(1000), "doc1")
	require.NoError(t, err)

	bob := hostFor("bob", 1000)
	require.NoError(t, ledger.Fund(ctx, bob, id))

	inv, err := ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, inv.Funded)

	require.Len(t, bob.Transfers, 1)
	assert.Equal(t, factor.Identity("alice"), bob.Transfers[0].To)
	assert.True(t, bob.Transfers[0].Amount.Equal(factor.NewAmount(1000)))

	events := log.Events()
	require.Len(t, events, 2)
	funded, ok := events[1].(factor.Funded)
	require.True(t, ok)
	assert.Equal(t, id, funded.ID)
	assert.Equal(t, factor.Identity("bob"), funded.Funder)
	assert.True(t, funded.Amount.Equal(factor.NewAmount(1000)))
}

func TestFund_Twice_AlreadyFunded(t *testing.T) {
	ledger, log := newTestLedger(t)
	ctx := context.Background()

	id, err := ledger.Mint(ctx, hostFor("alice", 0), factor.NewAmount(1000), "doc1")
	require.NoError(t, err)
	require.NoError(t, ledger.Fund(ctx, hostFor("bob", 1000), id))

	// Second attempt by a different funder with plenty attached
	carol := hostFor("carol", 5000)
	err = ledger.Fund(ctx, carol, id)
	assert.ErrorIs(t, err, factor.ErrAlreadyFunded)
	assert.Empty(t, carol.Transfers, "failed fund moves no value")
	assert.Equal(t, 2, log.Len(), "no event for the failed attempt")

	inv, err := ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, inv.Funded, "record unchanged by the failed attempt")
}

func TestFund_Underpayment_InsufficientFunds(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	id, err := ledger.Mint(ctx, hostFor("alice", 0), factor.NewAmount(500), "doc2")
	require.NoError(t, err)

	bob := hostFor("bob", 499)
	err = ledger.Fund(ctx, bob, id)
	assert.ErrorIs(t, err, factor.ErrInsufficientFunds)

	var insufficientErr *factor.InsufficientFundsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.True(t, insufficientErr.Required.Equal(factor.NewAmount(500)))
	assert.True(t, insufficientErr.Attached.Equal(factor.NewAmount(499)))

	assert.Empty(t, bob.Transfers)
	inv, err := ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, inv.Funded, "record unchanged by the failed attempt")
}

func TestFund_UnknownID_NotFound(t *testing.T) {
	ledger, _ := newTestLedger(t)

	err := ledger.Fund(context.Background(), hostFor("bob", 1000000), 42)
	assert.ErrorIs(t, err, factor.ErrInvoiceNotFound)
	assert.True(t, factor.IsNotFound(err))
}

func TestFund_Overpayment_ForwardedInFull(t *testing.T) {
	// Overpayment goes to the owner untouched - not capped, not refunded.
	ledger, log := newTestLedger(t)
	ctx := context.Background()

	id, err := ledger.Mint(ctx, hostFor("alice", 0), factor.NewAmount(1000), "doc1")
	require.NoError(t, err)

	bob := hostFor("bob", 1500)
	require.NoError(t, ledger.Fund(ctx, bob, id))

	require.Len(t, bob.Transfers, 1)
	assert.True(t, bob.Transfers[0].Amount.Equal(factor.NewAmount(1500)))

	funded := log.Events()[1].(factor.Funded)
	assert.True(t, funded.Amount.Equal(factor.NewAmount(1500)),
		"event records the attached value, not the face amount")
}

func TestFund_TransferFailure_SurfacedAndFlagStaysSet(t *testing.T) {
	// The flag flip is the linearization point: once persisted, a transfer
	// failure surfaces as an error but can never make the invoice fundable
	// twice.
	ledger, log := newTestLedger(t)
	ctx := context.Background()

	id, err := ledger.Mint(ctx, hostFor("alice", 0), factor.NewAmount(1000), "doc1")
	require.NoError(t, err)

	broken := hostFor("bob", 1000)
	broken.TransferErr = errors.New("settlement rail unavailable")
	err = ledger.Fund(ctx, broken, id)
	require.Error(t, err)
	assert.Equal(t, 1, log.Len(), "no Funded event when the transfer fails")

	inv, err := ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, inv.Funded)

	// A retry hits the guard instead of double-funding.
	err = ledger.Fund(ctx, hostFor("carol", 1000), id)
	assert.ErrorIs(t, err, factor.ErrAlreadyFunded)
}

// =============================================================================
// FULL LIFECYCLE SCENARIO
// =============================================================================

func TestScenario_MintThenFundThenConflict(t *testing.T) {
	// The canonical walkthrough: mint, fund, then a rejected second fund.
	ledger, log := newTestLedger(t)
	ctx := context.Background()

	id, err := ledger.Mint(ctx, hostFor("A", 0), factor.NewAmount(1000), "doc1")
	require.NoError(t, err)
	assert.Equal(t, factor.InvoiceID(0), id)

	b := hostFor("B", 1000)
	require.NoError(t, ledger.Fund(ctx, b, id))

	inv, err := ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, inv.Funded)
	require.Len(t, b.Transfers, 1)
	assert.Equal(t, factor.Identity("A"), b.Transfers[0].To)

	err = ledger.Fund(ctx, hostFor("C", 1000), id)
	assert.ErrorIs(t, err, factor.ErrAlreadyFunded)

	events := log.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "minted", events[0].Kind())
	assert.Equal(t, "funded", events[1].Kind())
}

func TestLedger_WorksWithNoSink(t *testing.T) {
	ledger := factor.NewLedger(store.NewMemory(), nil)
	ctx := context.Background()

	id, err := ledger.Mint(ctx, hostFor("alice", 0), factor.NewAmount(100), "doc")
	require.NoError(t, err)
	require.NoError(t, ledger.Fund(ctx, hostFor("bob", 100), id))
}

func TestLedger_FanOutSink(t *testing.T) {
	first, second := factor.NewLog(), factor.NewLog()
	ledger := factor.NewLedger(store.NewMemory(), factor.FanOut{first, second})

	_, err := ledger.Mint(context.Background(), hostFor("alice", 0), factor.NewAmount(100), "doc")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
}
