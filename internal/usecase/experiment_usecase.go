package usecase

import (
	"context"
	"time"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// ExperimentUsecase runs A/B tests over notification content.
type ExperimentUsecase interface {
	// CreateTest validates and persists an experiment definition.
	CreateTest(ctx context.Context, test *entity.ABTest) (*entity.ABTest, error)

	// ListTests returns every experiment definition.
	ListTests(ctx context.Context) ([]*entity.ABTest, error)

	// ListActiveTests returns the running experiments at the instant.
	ListActiveTests(ctx context.Context, now time.Time) ([]*entity.ABTest, error)

	// AssignVariant deterministically buckets the user into a variant.
	// It returns nil when the test is not running or the user falls
	// outside the target audience.
	AssignVariant(ctx context.Context, testID uuid.UUID, userID string) (*entity.ABTestVariant, error)

	// SendTestNotification merges the assigned variant's override onto
	// the base content, records a result row and delivers. It returns
	// nil when no variant applies.
	SendTestNotification(ctx context.Context, base entity.NotificationContent, testID uuid.UUID, userID string) (*entity.ABTestResult, error)

	// RecordOutcome updates the matching result row for an opened,
	// clicked or converted event. Clicking implies opening. It reports
	// whether a row was found.
	RecordOutcome(ctx context.Context, testID, notificationID uuid.UUID, userID string, kind entity.InteractionKind, at time.Time) (bool, error)

	// Analyze computes the comparative per-variant report.
	Analyze(ctx context.Context, testID uuid.UUID) (*entity.ABTestReport, error)

	// CompleteFinishedTests transitions running tests past their end
	// date, or meeting the significance thresholds, to completed.
	CompleteFinishedTests(ctx context.Context, now time.Time) error

	// PurgeResultsOlderThan drops result rows sent before the cutoff.
	PurgeResultsOlderThan(ctx context.Context, cutoff time.Time) error
}
