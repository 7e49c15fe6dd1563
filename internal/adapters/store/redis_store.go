package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
	redisclient "github.com/inkatlas/tattoo-directory/internal/infrastructure/clients/redis"
	apperrors "github.com/inkatlas/tattoo-directory/pkg/errors"
)

// RedisStore implements the KVStore interface using Redis
type RedisStore struct {
	client *redisclient.Client
}

// NewRedisStore creates a new Redis key-value store adapter
func NewRedisStore(client *redisclient.Client) providers.KVStore {
	return &RedisStore{
		client: client,
	}
}

// Get retrieves the value stored under key
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	result, err := s.client.Client().Get(ctx, key).Result()
	if err == redis.Nil {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("key not found: %s", key))
	}
	if err != nil {
		return "", apperrors.NewStorageError("failed to get from store", err)
	}
	return result, nil
}

// Set stores value under key, overwriting any previous value
func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Client().Set(ctx, key, value, 0).Err(); err != nil {
		return apperrors.NewStorageError("failed to set in store", err)
	}
	return nil
}

// Delete removes the value stored under key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Client().Del(ctx, key).Err(); err != nil {
		return apperrors.NewStorageError("failed to delete from store", err)
	}
	return nil
}
