// Package store provides factor.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/flowfi/factor-engine/factor"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	invoices map[factor.InvoiceID]factor.Invoice
	count    uint64
}

func NewMemory() *Memory {
	return &Memory{invoices: make(map[factor.InvoiceID]factor.Invoice)}
}

func (m *Memory) Put(_ context.Context, inv factor.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.ID] = inv
	return nil
}

func (m *Memory) Get(_ context.Context, id factor.InvoiceID) (*factor.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, nil
	}
	// Copy so callers can't mutate stored state.
	out := inv
	return &out, nil
}

func (m *Memory) List(_ context.Context) ([]factor.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]factor.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Count(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count, nil
}

func (m *Memory) SetCount(_ context.Context, n uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count = n
	return nil
}
