package repository

import (
	"context"

	"pulse/internal/domain/entity"
)

// ExperimentRepository persists experiment definitions and their result
// rows as two independent documents.
type ExperimentRepository interface {
	// LoadTests restores all experiment definitions.
	LoadTests(ctx context.Context) ([]*entity.ABTest, error)

	// SaveTests durably replaces all experiment definitions.
	SaveTests(ctx context.Context, tests []*entity.ABTest) error

	// LoadResults restores all experiment result rows.
	LoadResults(ctx context.Context) ([]*entity.ABTestResult, error)

	// SaveResults durably replaces all experiment result rows.
	SaveResults(ctx context.Context, results []*entity.ABTestResult) error
}
