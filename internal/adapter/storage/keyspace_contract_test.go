package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-store/internal/core/domain"
	"github.com/rl1809/inventory-store/internal/port"
)

func put(t *testing.T, ks port.Keyspace, key string, inv domain.Inventory) {
	t.Helper()
	err := ks.Update(context.Background(), key, func(*domain.Inventory) (*domain.Inventory, error) {
		return &inv, nil
	})
	require.NoError(t, err)
}

// testKeyspace exercises behavior every port.Keyspace must share. Keys are
// assumed to be absent when it starts.
func testKeyspace(t *testing.T, ks port.Keyspace) {
	ctx := context.Background()

	t.Run("get absent", func(t *testing.T) {
		inv, err := ks.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, inv)
	})

	t.Run("update creates", func(t *testing.T) {
		put(t, ks, "created", domain.New(10))

		inv, err := ks.Get(ctx, "created")
		require.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, domain.New(10), *inv)
	})

	t.Run("update mutates", func(t *testing.T) {
		put(t, ks, "mutated", domain.New(10))

		err := ks.Update(ctx, "mutated", func(inv *domain.Inventory) (*domain.Inventory, error) {
			require.NotNil(t, inv)
			inv.Take(4)
			return inv, nil
		})
		require.NoError(t, err)

		inv, err := ks.Get(ctx, "mutated")
		require.NoError(t, err)
		assert.Equal(t, uint32(6), inv.Current())
		assert.Equal(t, uint32(10), inv.Total())
	})

	t.Run("update error leaves record", func(t *testing.T) {
		put(t, ks, "aborted", domain.New(10))
		boom := errors.New("boom")

		err := ks.Update(ctx, "aborted", func(inv *domain.Inventory) (*domain.Inventory, error) {
			inv.Take(10)
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		inv, err := ks.Get(ctx, "aborted")
		require.NoError(t, err)
		assert.Equal(t, uint32(10), inv.Current())
	})

	t.Run("update nil result writes nothing", func(t *testing.T) {
		err := ks.Update(ctx, "untouched", func(inv *domain.Inventory) (*domain.Inventory, error) {
			assert.Nil(t, inv)
			return nil, nil
		})
		require.NoError(t, err)

		inv, err := ks.Get(ctx, "untouched")
		require.NoError(t, err)
		assert.Nil(t, inv)
	})

	t.Run("delete returns previous", func(t *testing.T) {
		stored := domain.New(7)
		stored.Take(2)
		put(t, ks, "deleted", stored)

		inv, err := ks.Delete(ctx, "deleted")
		require.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, stored, *inv)

		inv, err = ks.Get(ctx, "deleted")
		require.NoError(t, err)
		assert.Nil(t, inv)

		inv, err = ks.Delete(ctx, "deleted")
		require.NoError(t, err)
		assert.Nil(t, inv)
	})

	t.Run("scan", func(t *testing.T) {
		put(t, ks, "scan-a", domain.New(1))
		put(t, ks, "scan-b", domain.New(2))

		seen := map[string]domain.Inventory{}
		err := ks.Scan(ctx, func(key string, inv domain.Inventory) error {
			seen[key] = inv
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, domain.New(1), seen["scan-a"])
		assert.Equal(t, domain.New(2), seen["scan-b"])
	})

	t.Run("load overwrites and creates", func(t *testing.T) {
		put(t, ks, "load-a", domain.New(1))

		partial := domain.New(30)
		partial.Take(12)
		require.NoError(t, ks.Load(ctx, []domain.SnapshotEntry{
			{Key: "load-a", Inventory: domain.New(10)},
			{Key: "load-b", Inventory: partial},
		}))

		a, err := ks.Get(ctx, "load-a")
		require.NoError(t, err)
		assert.Equal(t, domain.New(10), *a)
		b, err := ks.Get(ctx, "load-b")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, partial, *b)

		require.NoError(t, ks.Load(ctx, nil))
	})

	t.Run("load many", func(t *testing.T) {
		entries := make([]domain.SnapshotEntry, 0, 250)
		for i := 0; i < cap(entries); i++ {
			entries = append(entries, domain.SnapshotEntry{
				Key:       fmt.Sprintf("bulk-%03d", i),
				Inventory: domain.New(uint32(i)),
			})
		}
		require.NoError(t, ks.Load(ctx, entries))

		inv, err := ks.Get(ctx, "bulk-249")
		require.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, uint32(249), inv.Total())
	})

	t.Run("concurrent take never oversells", func(t *testing.T) {
		const stock, requests = 20, 50
		put(t, ks, "concurrent", domain.New(stock))

		var successCount atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < requests; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var took bool
				err := ks.Update(ctx, "concurrent", func(inv *domain.Inventory) (*domain.Inventory, error) {
					_, took = inv.Take(1)
					if !took {
						return nil, nil
					}
					return inv, nil
				})
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if took {
					successCount.Add(1)
				}
			}()
		}
		wg.Wait()

		inv, err := ks.Get(ctx, "concurrent")
		require.NoError(t, err)
		assert.Equal(t, uint32(0), inv.Current())
		assert.Equal(t, int32(stock), successCount.Load())
	})
}
