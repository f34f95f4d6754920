package port

import (
	"context"

	"github.com/rl1809/inventory-store/internal/core/domain"
)

type SnapshotRepository interface {
	// SaveSnapshot durably stores snap, replacing any earlier snapshot.
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error

	// LoadSnapshot returns the latest snapshot, or nil if none was saved.
	LoadSnapshot(ctx context.Context) (*domain.Snapshot, error)
}
