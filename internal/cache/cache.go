// Package cache provides short-lived key/value storage with in-memory and
// Redis implementations.
package cache

import (
	"context"
	"time"
)

// Cache stores byte values with a TTL.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Update atomically replaces the value under key with fn's result.
	// fn receives nil when the key is missing and may run more than once.
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) ([]byte, error)

	// Close releases resources held by the cache.
	Close() error
}

// UpdateFunc computes a new value from the current one.
type UpdateFunc func(current []byte) ([]byte, error)

// Error is a cache error constant.
type Error string

func (e Error) Error() string { return string(e) }

// ErrCacheMiss indicates the key was not found in cache.
const ErrCacheMiss Error = "cache miss"
