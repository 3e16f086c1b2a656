package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
)

const (
	dataField    = "data"
	versionField = "version"
)

// Store keeps each document in a Redis hash holding the serialized
// value and its version token. Conditional writes run under WATCH so a
// competing writer turns the transaction into a conflict instead of a
// lost update.
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Get(ctx context.Context, key string) (kv.Document, error) {
	values, err := s.rdb.HMGet(ctx, key, dataField, versionField).Result()
	if err != nil {
		return kv.Document{}, fmt.Errorf("get %s: %w", key, err)
	}
	if values[0] == nil || values[1] == nil {
		return kv.Document{}, kv.ErrNotFound
	}

	data, ok := values[0].(string)
	if !ok {
		return kv.Document{}, fmt.Errorf("get %s: unexpected data type %T", key, values[0])
	}

	var version int64
	if _, err := fmt.Sscanf(values[1].(string), "%d", &version); err != nil {
		return kv.Document{}, fmt.Errorf("get %s: parse version: %w", key, err)
	}

	return kv.Document{Data: []byte(data), Version: version}, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, dataField, data)
		pipe.HIncrBy(ctx, key, versionField, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) PutVersion(ctx context.Context, key string, data []byte, expected int64) error {
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, versionField).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}

		if current != expected {
			return kv.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, dataField, data, versionField, expected+1)
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return kv.ErrConflict
	case errors.Is(err, kv.ErrConflict):
		return kv.ErrConflict
	case err != nil:
		return fmt.Errorf("put %s (version %d): %w", key, expected, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return count > 0, nil
}
