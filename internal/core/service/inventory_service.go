package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rl1809/inventory-store/internal/core/domain"
	"github.com/rl1809/inventory-store/internal/port"
)

// DefaultDeduction is the count used when a deduct request omits one.
const DefaultDeduction = 1

var (
	ErrOutOfRange       = fmt.Errorf("out of range, max = %d", uint64(math.MaxUint32))
	ErrExists           = errors.New("inventory exists")
	ErrShortage         = errors.New("inventory shortage")
	ErrOverReturn       = errors.New("remaining inventory exceeding total")
	ErrIncreaseOverflow = errors.New("increase overflows total")
	ErrNoSnapshotStore  = errors.New("no snapshot store configured")
	ErrKeyTooLong       = fmt.Errorf("key too long, max = %d bytes", domain.MaxKeyLen)
)

type InventoryService struct {
	keyspace  port.Keyspace
	snapshots port.SnapshotRepository
	logger    *zap.Logger
}

// NewInventoryService wires the command handlers. snapshots may be nil when
// persistence is disabled.
func NewInventoryService(keyspace port.Keyspace, snapshots port.SnapshotRepository, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		keyspace:  keyspace,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Set creates a full inventory at key, or resets the existing one.
func (s *InventoryService) Set(ctx context.Context, key string, total uint64) error {
	if len(key) > domain.MaxKeyLen {
		return ErrKeyTooLong
	}
	n, err := narrow(total)
	if err != nil {
		return err
	}
	s.logger.Debug("new inventory", zap.String("key", key), zap.Uint32("total", n))

	return s.keyspace.Update(ctx, key, func(inv *domain.Inventory) (*domain.Inventory, error) {
		if inv != nil {
			inv.Reset(n)
			return inv, nil
		}
		created := domain.New(n)
		return &created, nil
	})
}

// SetNX creates a full inventory at key, failing with ErrExists if one is present.
func (s *InventoryService) SetNX(ctx context.Context, key string, total uint64) error {
	if len(key) > domain.MaxKeyLen {
		return ErrKeyTooLong
	}
	n, err := narrow(total)
	if err != nil {
		return err
	}
	s.logger.Debug("new inventory if absent", zap.String("key", key), zap.Uint32("total", n))

	return s.keyspace.Update(ctx, key, func(inv *domain.Inventory) (*domain.Inventory, error) {
		if inv != nil {
			return nil, fmt.Errorf("%w: %q", ErrExists, key)
		}
		created := domain.New(n)
		return &created, nil
	})
}

// Get returns the record at key. found is false when the key is absent.
func (s *InventoryService) Get(ctx context.Context, key string) (inv domain.Inventory, found bool, err error) {
	s.logger.Debug("get inventory", zap.String("key", key))

	stored, err := s.keyspace.Get(ctx, key)
	if err != nil {
		return domain.Inventory{}, false, fmt.Errorf("get %s: %w", key, err)
	}
	if stored == nil {
		return domain.Inventory{}, false, nil
	}
	return *stored, true, nil
}

// Deduct takes count from key and returns the remaining quantity.
func (s *InventoryService) Deduct(ctx context.Context, key string, count uint64) (current uint32, found bool, err error) {
	n, err := narrow(count)
	if err != nil {
		return 0, false, err
	}
	s.logger.Debug("deduct inventory", zap.String("key", key), zap.Uint32("deduction", n))

	err = s.keyspace.Update(ctx, key, func(inv *domain.Inventory) (*domain.Inventory, error) {
		found = inv != nil
		if !found {
			return nil, nil
		}
		var ok bool
		if current, ok = inv.Take(n); !ok {
			return nil, ErrShortage
		}
		return inv, nil
	})
	if err != nil {
		return 0, found, err
	}
	return current, found, nil
}

// Increase grows both total and current of key by the same amount.
func (s *InventoryService) Increase(ctx context.Context, key string, by uint64) (inv domain.Inventory, found bool, err error) {
	n, err := narrow(by)
	if err != nil {
		return domain.Inventory{}, false, err
	}
	s.logger.Debug("increase inventory", zap.String("key", key), zap.Uint32("addition", n))

	err = s.keyspace.Update(ctx, key, func(stored *domain.Inventory) (*domain.Inventory, error) {
		found = stored != nil
		if !found {
			return nil, nil
		}
		if !stored.CanIncrease(n) {
			return nil, fmt.Errorf("%w: total %d + %d", ErrIncreaseOverflow, stored.Total(), n)
		}
		stored.Increase(n)
		inv = *stored
		return stored, nil
	})
	if err != nil {
		return domain.Inventory{}, found, err
	}
	return inv, found, nil
}

// Return puts amount back into key and returns the new quantity.
func (s *InventoryService) Return(ctx context.Context, key string, amount uint64) (current uint32, found bool, err error) {
	n, err := narrow(amount)
	if err != nil {
		return 0, false, err
	}
	s.logger.Debug("return inventory", zap.String("key", key), zap.Uint32("return", n))

	err = s.keyspace.Update(ctx, key, func(inv *domain.Inventory) (*domain.Inventory, error) {
		found = inv != nil
		if !found {
			return nil, nil
		}
		var ok bool
		if current, ok = inv.Return(n); !ok {
			return nil, ErrOverReturn
		}
		return inv, nil
	})
	if err != nil {
		return 0, found, err
	}
	return current, found, nil
}

// Delete removes key and returns the record it held.
func (s *InventoryService) Delete(ctx context.Context, key string) (inv domain.Inventory, found bool, err error) {
	s.logger.Debug("delete inventory", zap.String("key", key))

	deleted, err := s.keyspace.Delete(ctx, key)
	if err != nil {
		return domain.Inventory{}, false, fmt.Errorf("delete %s: %w", key, err)
	}
	if deleted == nil {
		return domain.Inventory{}, false, nil
	}
	return *deleted, true, nil
}

// MemoryUsage reports the resident size of the record at key.
func (s *InventoryService) MemoryUsage(ctx context.Context, key string) (bytes int, found bool, err error) {
	inv, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return 0, found, err
	}
	return inv.MemUsage(), true, nil
}

func narrow(v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, ErrOutOfRange
	}
	return uint32(v), nil
}
