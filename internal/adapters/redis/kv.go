package redis

// Package redis provides the Redis-backed persistence adapter.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/parceldesk/ops-api/internal/ports"
)

// KVStore implements ports.KeyValueStore on a Redis backend. SetAll runs
// inside a MULTI/EXEC pipeline so readers observe all entries or none.
type KVStore struct {
	client redis.UniversalClient
	prefix string
}

// NewKVStore creates a Redis key-value store with the default key prefix.
func NewKVStore(client redis.UniversalClient) *KVStore {
	return &KVStore{client: client, prefix: "opsapi:"}
}

// NewKVStoreWithPrefix creates a Redis key-value store with a custom key prefix.
func NewKVStoreWithPrefix(client redis.UniversalClient, prefix string) *KVStore {
	return &KVStore{client: client, prefix: prefix}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ports.ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (s *KVStore) SetAll(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for key, value := range entries {
		if key == "" {
			return errors.New("key cannot be empty")
		}
		pipe.Set(ctx, s.prefix+key, value, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis setall: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		prefixed = append(prefixed, s.prefix+key)
	}
	if len(prefixed) == 0 {
		return nil
	}

	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}
