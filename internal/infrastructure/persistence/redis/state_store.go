// Package redis provides the Redis-backed StateStore, used when several
// clients of the same user share state
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// NewClient creates a Redis client from configuration and checks the connection
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (redis.UniversalClient, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis addrs cannot be empty")
	}

	// Create Redis options
	opts := &redis.UniversalOptions{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,

		// Connection timeouts
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		// Connection pool settings
		PoolTimeout: time.Second * 10,
	}

	client := redis.NewUniversalClient(opts)

	// Test initial connection
	pingCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis client initialized successfully", zap.Strings("addrs", cfg.Addrs))
	return client, nil
}

// StateStore implements outbound.StateStore on Redis string keys
type StateStore struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

// NewStateStore creates a new Redis state store. Every key is stored under prefix.
func NewStateStore(client redis.UniversalClient, prefix string, logger *zap.Logger) *StateStore {
	return &StateStore{
		client: client,
		prefix: prefix,
		logger: logger.Named("redis-state"),
	}
}

func (s *StateStore) key(key string) string {
	return s.prefix + key
}

// Get retrieves a value
func (s *StateStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, outbound.ErrStateNotFound
	}
	if err != nil {
		s.logger.Debug("State get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to read state %s: %w", key, err)
	}
	return data, nil
}

// Set stores a value without expiry
func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		s.logger.Error("State set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write state %s: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (s *StateStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.logger.Error("State delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete state %s: %w", key, err)
	}
	return nil
}

var _ outbound.StateStore = (*StateStore)(nil)
