package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-store/internal/core/domain"
	"github.com/rl1809/inventory-store/internal/port"
)

const (
	DefaultKeyPrefix = "inv:"
	maxTxRetries     = 1000
	scanBatchSize    = 100
)

var (
	ErrWrongType       = errors.New("key holds a value that is not an inventory")
	ErrTooManyConflict = errors.New("too many concurrent updates")
)

// RedisAdapter stores each record as its 8-byte encoding under prefix+key.
// Updates run as WATCH/MULTI transactions so concurrent writers to the same
// key are serialized.
type RedisAdapter struct {
	client *redis.Client
	prefix string
}

func NewRedisAdapter(client *redis.Client, prefix string) *RedisAdapter {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisAdapter{client: client, prefix: prefix}
}

func (r *RedisAdapter) Get(ctx context.Context, key string) (*domain.Inventory, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(key, data)
}

func (r *RedisAdapter) Update(ctx context.Context, key string, fn port.UpdateFunc) error {
	redisKey := r.prefix + key

	txf := func(tx *redis.Tx) error {
		var current *domain.Inventory
		data, err := tx.Get(ctx, redisKey).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if current, err = decode(key, data); err != nil {
				return err
			}
		}

		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}

		encoded, err := next.MarshalBinary()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, encoded, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, redisKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: %w", key, ErrTooManyConflict)
}

func (r *RedisAdapter) Delete(ctx context.Context, key string) (*domain.Inventory, error) {
	data, err := r.client.GetDel(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(key, data)
}

// Load writes entries with MSET in batches inside a single MULTI/EXEC.
func (r *RedisAdapter) Load(ctx context.Context, entries []domain.SnapshotEntry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pairs := make([]any, 0, 2*scanBatchSize)
		for i, entry := range entries {
			encoded, err := entry.Inventory.MarshalBinary()
			if err != nil {
				return err
			}
			pairs = append(pairs, r.prefix+entry.Key, encoded)
			if len(pairs) == 2*scanBatchSize || i == len(entries)-1 {
				pipe.MSet(ctx, pairs...)
				pairs = make([]any, 0, 2*scanBatchSize)
			}
		}
		return nil
	})
	return err
}

func (r *RedisAdapter) Scan(ctx context.Context, fn func(key string, inv domain.Inventory) error) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatchSize).Iterator()

	batch := make([]string, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		values, err := r.client.MGet(ctx, batch...).Result()
		if err != nil {
			return err
		}
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				// deleted since SCAN returned it
				continue
			}
			key := strings.TrimPrefix(batch[i], r.prefix)
			inv, err := decode(key, []byte(s))
			if err != nil {
				return err
			}
			if err := fn(key, *inv); err != nil {
				return err
			}
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return flush()
}

func decode(key string, data []byte) (*domain.Inventory, error) {
	var inv domain.Inventory
	if err := inv.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWrongType, key, err)
	}
	return &inv, nil
}
