package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/inventory-store/internal/core/domain"
	"github.com/rl1809/inventory-store/internal/port"
)

// MemoryAdapter is an in-process keyspace. Each key slot owns its record;
// callers only ever see copies.
type MemoryAdapter struct {
	mu    sync.RWMutex
	slots map[string]*domain.Inventory
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{slots: make(map[string]*domain.Inventory)}
}

func (m *MemoryAdapter) Get(ctx context.Context, key string) (*domain.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	slot, ok := m.slots[key]
	if !ok {
		return nil, nil
	}
	inv := *slot
	return &inv, nil
}

func (m *MemoryAdapter) Update(ctx context.Context, key string, fn port.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var working *domain.Inventory
	if slot, ok := m.slots[key]; ok {
		inv := *slot
		working = &inv
	}

	next, err := fn(working)
	if err != nil {
		return err
	}
	if next != nil {
		stored := *next
		m.slots[key] = &stored
	}
	return nil
}

func (m *MemoryAdapter) Delete(ctx context.Context, key string) (*domain.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.slots[key]
	if !ok {
		return nil, nil
	}
	delete(m.slots, key)
	return slot, nil
}

func (m *MemoryAdapter) Load(ctx context.Context, entries []domain.SnapshotEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range entries {
		stored := entry.Inventory
		m.slots[entry.Key] = &stored
	}
	return nil
}

// Scan visits keys in sorted order over a consistent copy of the keyspace.
func (m *MemoryAdapter) Scan(ctx context.Context, fn func(key string, inv domain.Inventory) error) error {
	m.mu.RLock()
	copied := make(map[string]domain.Inventory, len(m.slots))
	for key, slot := range m.slots {
		copied[key] = *slot
	}
	m.mu.RUnlock()

	keys := make([]string, 0, len(copied))
	for key := range copied {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(key, copied[key]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryAdapter) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}
