// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the injected durable storage capability: a key to JSON
// mapping that survives process restarts. The engine is the only writer
// of its keys; external callers never mutate persisted data directly.
type KeyValueStore interface {
	// Get retrieves the raw JSON payload stored under key, or
	// ErrKeyNotFound when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set durably writes the raw JSON payload under key.
	Set(ctx context.Context, key string, value []byte) error
}
