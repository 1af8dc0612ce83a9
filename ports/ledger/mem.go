package ledger

import (
	"context"
	"sync"
)

// MemStore keeps entries in a map. It is safe for concurrent use.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]Entry
}

func NewMemStore(entries ...Entry) *MemStore {
	m := &MemStore{data: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		m.data[e.Account] = e
	}
	return m
}

func (m *MemStore) Get(_ context.Context, account string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[account]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *MemStore) Put(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[e.Account] = e
	return nil
}

var _ Store = (*MemStore)(nil)
