// Package kv implements the typed repository boundary on top of the
// injected key-value storage capability. Each collection round-trips as
// one JSON document; time fields serialize as RFC3339 strings.
package kv

import (
	"context"
	"encoding/json"
	"log/slog"

	"pulse/internal/domain/repository"

	"github.com/pkg/errors"
)

// Storage keys for the engine's persisted collections.
const (
	keySchedule          = "pulse:schedule"
	keyPatterns          = "pulse:patterns"
	keyAnalytics         = "pulse:analytics"
	keyExperiments       = "pulse:experiments"
	keyExperimentResults = "pulse:experiment_results"
	keyPreferences       = "pulse:preferences"
)

// loadDocument restores a collection from the store. A missing key yields
// the zero value. A corrupt payload also yields the zero value, logged at
// error level: persisted-state corruption recovers locally to defaults
// and is never propagated to callers.
func loadDocument[T any](ctx context.Context, store repository.KeyValueStore, logger *slog.Logger, key string) (T, error) {
	var value T

	raw, err := store.Get(ctx, key)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return value, nil
	}
	if err != nil {
		return value, errors.Wrapf(err, "failed to load %s", key)
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		logger.Error("Persisted document is corrupt, falling back to empty collection",
			slog.String("key", key),
			slog.Any("error", err),
		)

		var zero T

		return zero, nil
	}

	return value, nil
}

// saveDocument durably replaces a collection in the store.
func saveDocument[T any](ctx context.Context, store repository.KeyValueStore, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", key)
	}

	if err := store.Set(ctx, key, raw); err != nil {
		return errors.Wrapf(err, "failed to save %s", key)
	}

	return nil
}
