package repository

import (
	"context"

	"pulse/internal/domain/entity"
)

// AnalyticsRepository persists the notification analytics log.
type AnalyticsRepository interface {
	// LoadAll restores the analytics records. A missing or corrupt
	// document degrades to an empty collection.
	LoadAll(ctx context.Context) ([]*entity.AnalyticsRecord, error)

	// SaveAll durably replaces the analytics records.
	SaveAll(ctx context.Context, records []*entity.AnalyticsRecord) error
}
