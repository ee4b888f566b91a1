/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Durable persistence for the factoring ledger: the invoice mapping, the
  mint counter, the notification log, and payout records. In production
  the same patterns apply to PostgreSQL - only minor dialect differences.

INTERFACES IMPLEMENTED:
  factor.Store:     Invoice mapping + counter
  factor.EventSink: Durable, append-only notification log

KEY TABLES:
  invoices:  Mapping keyed by invoice id. The only UPDATE ever issued
             flips the funded flag; nothing is deleted.
  counters:  Single row holding the next invoice id.
  events:    Append-only Minted/Funded log, in emission order.
  payouts:   Append-only record of value forwarded to invoice owners.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MONEY COLUMNS:
  Amounts are stored as base-10 integer strings, not REAL, so values of
  any magnitude round-trip exactly.

USAGE:
  store, err := sqlite.New("./data/flowfi.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := factor.NewLedger(store, store)

SEE ALSO:
  - factor/store.go: Interface definition
  - factor/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flowfi/factor-engine/factor"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Invoice mapping (keyed by ledger-assigned id, never deleted)
	CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY,
		owner TEXT NOT NULL,
		amount TEXT NOT NULL,
		reference TEXT NOT NULL,
		funded INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_owner ON invoices(owner);
	CREATE INDEX IF NOT EXISTS idx_invoices_funded ON invoices(funded);

	-- Single counter row: next invoice id
	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
	INSERT OR IGNORE INTO counters (name, value) VALUES ('invoice_count', 0);

	-- Notification log (append-only, emission order)
	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		invoice_id INTEGER NOT NULL,
		account TEXT NOT NULL,
		amount TEXT NOT NULL,
		reference TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_invoice ON events(invoice_id);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);

	-- Payouts (append-only record of value forwarded to owners)
	CREATE TABLE IF NOT EXISTS payouts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id INTEGER NOT NULL,
		recipient TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payouts_recipient ON payouts(recipient);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INVOICE STORE (factor.Store interface)
// =============================================================================

// Put inserts or rewrites the record keyed by inv.ID.
func (s *Store) Put(ctx context.Context, inv factor.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO invoices (id, owner, amount, reference, funded, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET funded = excluded.funded, updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		int64(inv.ID),
		string(inv.Owner),
		inv.Amount.String(),
		inv.Reference,
		boolToInt(inv.Funded),
		now,
		now,
	)
	return err
}

// Get returns the record for id, or nil if absent.
func (s *Store) Get(ctx context.Context, id factor.InvoiceID) (*factor.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, amount, reference, funded FROM invoices WHERE id = ?`, int64(id))

	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// List returns every stored invoice ordered by id.
func (s *Store) List(ctx context.Context) ([]factor.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, amount, reference, funded FROM invoices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []factor.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// Count returns the next invoice id to assign.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM counters WHERE name = 'invoice_count'`).Scan(&n)
	return n, err
}

// SetCount persists the next invoice id.
func (s *Store) SetCount(ctx context.Context, n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE counters SET value = ? WHERE name = 'invoice_count'`, n)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*factor.Invoice, error) {
	var (
		id        int64
		owner     string
		amount    string
		reference string
		funded    int
	)
	if err := row.Scan(&id, &owner, &amount, &reference, &funded); err != nil {
		return nil, err
	}

	amt, err := factor.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for invoice %d: %w", id, err)
	}

	return &factor.Invoice{
		ID:        factor.InvoiceID(id),
		Owner:     factor.Identity(owner),
		Amount:    amt,
		Reference: reference,
		Funded:    funded != 0,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// EVENT SINK (factor.EventSink interface)
// =============================================================================

// EventRecord is a persisted notification row.
type EventRecord struct {
	Seq       int64
	Kind      string
	InvoiceID uint64
	Account   string // owner for minted, funder for funded
	Amount    string
	Reference string
	CreatedAt time.Time
}

// Emit appends the event to the durable log. Emission is fire-and-forget:
// a write failure is logged, never surfaced to the ledger call.
func (s *Store) Emit(ctx context.Context, e factor.Event) {
	var rec EventRecord
	switch ev := e.(type) {
	case factor.Minted:
		rec = EventRecord{
			Kind:      ev.Kind(),
			InvoiceID: uint64(ev.ID),
			Account:   string(ev.Owner),
			Amount:    ev.Amount.String(),
			Reference: ev.Reference,
		}
	case factor.Funded:
		rec = EventRecord{
			Kind:      ev.Kind(),
			InvoiceID: uint64(ev.ID),
			Account:   string(ev.Funder),
			Amount:    ev.Amount.String(),
		}
	default:
		log.Printf("sqlite: dropping unknown event kind %q", e.Kind())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (kind, invoice_id, account, amount, reference, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Kind, rec.InvoiceID, rec.Account, rec.Amount, rec.Reference,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		log.Printf("sqlite: failed to persist %s event for invoice %d: %v", rec.Kind, rec.InvoiceID, err)
	}
}

// ListEvents returns the notification log in emission order.
func (s *Store) ListEvents(ctx context.Context) ([]EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, kind, invoice_id, account, amount, COALESCE(reference, ''), created_at
		 FROM events ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var rec EventRecord
		var createdAt string
		if err := rows.Scan(&rec.Seq, &rec.Kind, &rec.InvoiceID, &rec.Account,
			&rec.Amount, &rec.Reference, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// PAYOUTS - Record of value forwarded to invoice owners
// =============================================================================

// PayoutRecord is one value movement from a fund call's escrow to an owner.
type PayoutRecord struct {
	ID        int64
	InvoiceID uint64
	Recipient string
	Amount    string
	CreatedAt time.Time
}

// RecordPayout appends a payout row. Append-only, like everything else here.
func (s *Store) RecordPayout(ctx context.Context, invoiceID uint64, recipient factor.Identity, amount factor.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payouts (invoice_id, recipient, amount, created_at) VALUES (?, ?, ?, ?)`,
		invoiceID, string(recipient), amount.String(), time.Now().UTC().Format(time.RFC3339))
	return err
}

// ListPayouts returns payouts in creation order, optionally filtered by recipient.
func (s *Store) ListPayouts(ctx context.Context, recipient string) ([]PayoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, invoice_id, recipient, amount, created_at FROM payouts`
	var args []any
	if recipient != "" {
		query += ` WHERE recipient = ?`
		args = append(args, recipient)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayoutRecord
	for rows.Next() {
		var rec PayoutRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.InvoiceID, &rec.Recipient, &rec.Amount, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
