// Package cache provides the byte-level caches used for computed layouts and
// rendered graphs.
//
// Three implementations are available:
//   - [FileCache] stores entries as JSON files for CLI usage
//   - [RedisCache] shares entries between server replicas
//   - [NullCache] disables caching
//
// Keys are built by a [Keyer] so that every entry is addressed by a hash of
// the inputs that produced it. A catalog change therefore never serves a stale
// layout; the old entries simply expire.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a key/value store with per-entry expiry.
type Cache interface {
	// Get returns the cached bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the resources held by the cache.
	Close() error
}

// GetJSON decodes a cached JSON value into v. A corrupt entry counts as a
// miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v as JSON and stores it.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
