package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "picundo:file:"

// RedisFileStore keeps file contents as redis string values.
type RedisFileStore struct {
	client *redis.Client
}

// NewRedisFileStoreFromURL parses a redis URL and verifies the connection.
func NewRedisFileStoreFromURL(url string) (*RedisFileStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisFileStore(client), nil
}

// NewRedisFileStore wraps an existing client. Closing the store closes the client.
func NewRedisFileStore(client *redis.Client) *RedisFileStore {
	return &RedisFileStore{client: client}
}

func (s *RedisFileStore) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+path).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return data, err
}

func (s *RedisFileStore) Write(ctx context.Context, path string, data []byte) error {
	return s.client.Set(ctx, redisKeyPrefix+path, data, 0).Err()
}

func (s *RedisFileStore) Delete(ctx context.Context, path string) error {
	removed, err := s.client.Del(ctx, redisKeyPrefix+path).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return nil
}

func (s *RedisFileStore) Exists(ctx context.Context, path string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+path).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisFileStore) Close() error {
	return s.client.Close()
}
