package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/inventory-store/internal/core/domain"
)

// Snapshot copies every record in the keyspace and saves it to the snapshot store.
func (s *InventoryService) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	if s.snapshots == nil {
		return domain.Snapshot{}, ErrNoSnapshotStore
	}

	var entries []domain.SnapshotEntry
	err := s.keyspace.Scan(ctx, func(key string, inv domain.Inventory) error {
		entries = append(entries, domain.SnapshotEntry{Key: key, Inventory: inv})
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("scan keyspace: %w", err)
	}

	snap := domain.NewSnapshot(entries)
	if err := s.snapshots.SaveSnapshot(ctx, snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}

	s.logger.Info("snapshot saved",
		zap.String("snapshot_id", snap.ID),
		zap.Int("records", len(snap.Entries)),
	)
	return snap, nil
}

// Restore loads the latest snapshot into the keyspace, overwriting keys it
// names. The keyspace is left unchanged when any record fails to load. It
// returns the number of records restored.
func (s *InventoryService) Restore(ctx context.Context) (int, error) {
	if s.snapshots == nil {
		return 0, ErrNoSnapshotStore
	}

	snap, err := s.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		s.logger.Info("no snapshot to restore")
		return 0, nil
	}

	if err := s.keyspace.Load(ctx, snap.Entries); err != nil {
		return 0, fmt.Errorf("restore snapshot %s: %w", snap.ID, err)
	}

	s.logger.Info("snapshot restored",
		zap.String("snapshot_id", snap.ID),
		zap.Time("created_at", snap.CreatedAt),
		zap.Int("records", len(snap.Entries)),
	)
	return len(snap.Entries), nil
}

// RunSnapshotter saves a snapshot every interval until ctx is done, then
// saves a final one.
func (s *InventoryService) RunSnapshotter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := s.Snapshot(finalCtx); err != nil {
				s.logger.Error("final snapshot failed", zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			snapCtx, cancel := context.WithTimeout(ctx, interval)
			if _, err := s.Snapshot(snapCtx); err != nil {
				s.logger.Error("snapshot failed", zap.Error(err))
			}
			cancel()
		}
	}
}
