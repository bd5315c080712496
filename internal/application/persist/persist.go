// Package persist reads and writes store snapshots as JSON through an
// outbound.StateStore
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// Save encodes v under key. Failures are logged and swallowed; stores never
// surface persistence errors to their callers.
func Save(ctx context.Context, store outbound.StateStore, key string, v interface{}, logger *zap.Logger) {
	if store == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode state", zap.String("key", key), zap.Error(err))
		return
	}

	if err := store.Set(ctx, key, data); err != nil {
		logger.Warn("Failed to persist state", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes key, logging failures
func Delete(ctx context.Context, store outbound.StateStore, key string, logger *zap.Logger) {
	if store == nil {
		return
	}
	if err := store.Delete(ctx, key); err != nil && !errors.Is(err, outbound.ErrStateNotFound) {
		logger.Warn("Failed to delete state", zap.String("key", key), zap.Error(err))
	}
}

// Load decodes the value stored under key into v. It reports false when
// nothing is stored.
func Load(ctx context.Context, store outbound.StateStore, key string, v interface{}) (bool, error) {
	if store == nil {
		return false, nil
	}

	data, err := store.Get(ctx, key)
	if errors.Is(err, outbound.ErrStateNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
