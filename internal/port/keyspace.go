package port

import (
	"context"

	"github.com/rl1809/inventory-store/internal/core/domain"
)

// UpdateFunc receives the record stored at a key, or nil when the key is
// absent. It returns the record to store, or nil to leave the key untouched.
// A non-nil error aborts the update without writing.
type UpdateFunc func(inv *domain.Inventory) (*domain.Inventory, error)

type Keyspace interface {
	// Get returns the record at key, or nil if absent.
	Get(ctx context.Context, key string) (*domain.Inventory, error)

	// Update runs fn atomically with respect to other operations on key.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// Delete removes key and returns the record it held, or nil if absent.
	Delete(ctx context.Context, key string) (*domain.Inventory, error)

	// Load stores every entry, overwriting keys that exist. Either all
	// entries are written or none are.
	Load(ctx context.Context, entries []domain.SnapshotEntry) error

	// Scan calls fn for every record in the keyspace.
	Scan(ctx context.Context, fn func(key string, inv domain.Inventory) error) error
}
