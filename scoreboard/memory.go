package scoreboard

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the entries for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Add(_ context.Context, e Entry) (int, error) {
	e = e.complete()
	if err := e.Validate(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rank := 1
	for _, o := range m.entries {
		if rankCompare(o, e) < 0 {
			rank++
		}
	}
	m.entries = append(m.entries, e)
	return rank, nil
}

func (m *MemoryStore) Top(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	entries := slices.Clone(m.entries)
	m.mu.RUnlock()
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Or(rankCompare(a, b), cmp.Compare(a.ID, b.ID))
	})
	return entries[:min(len(entries), clampLimit(limit))], nil
}

func (m *MemoryStore) Close() error { return nil }
