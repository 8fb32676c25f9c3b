/*
Package store provides an in-memory table.Store for tests.

Mirrors the production SQLite store's observable behavior: absent sheets read
as empty tables, writes are full overwrites, and callers never share slices
with the store.
*/
package store

import (
	"context"
	"sync"

	"github.com/metas/incentive-engine/table"
)

// Memory is a thread-safe in-memory sheet store.
type Memory struct {
	mu     sync.RWMutex
	sheets map[string]table.Table
}

var _ table.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{sheets: make(map[string]table.Table)}
}

func (m *Memory) ReadTable(_ context.Context, name string) (table.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.sheets[name]
	if !ok {
		return table.Table{}, nil
	}
	return t.Clone(), nil
}

func (m *Memory) WriteTable(_ context.Context, name string, t table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sheets[name] = t.Clone()
	return nil
}

// Sheets returns the stored sheet names, for test assertions.
func (m *Memory) Sheets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.sheets))
	for n := range m.sheets {
		names = append(names, n)
	}
	return names
}
