package impl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Heuristic significance thresholds per confidence level: the per-variant
// sample floor and the minimum absolute primary-metric gap to control.
var (
	minSamplePerConfidence = map[int]int{99: 200, 95: 100, 90: 50}
	diffPerConfidence      = map[int]float64{99: 0.15, 95: 0.10, 90: 0.05}
)

type experimentService struct {
	mu          sync.Mutex
	repo        repository.ExperimentRepository
	patterns    usecase.PatternUsecase
	preferences usecase.PreferenceUsecase
	pusher      service.PushSender
	publisher   service.EventPublisher
	clock       service.Clock
	logger      *slog.Logger
	tests       []*entity.ABTest
	results     []*entity.ABTestResult
	loaded      bool
}

// ExperimentServiceParams holds dependencies for ExperimentService, injected by Fx.
type ExperimentServiceParams struct {
	fx.In

	ExperimentRepo    repository.ExperimentRepository
	PatternUsecase    usecase.PatternUsecase
	PreferenceUsecase usecase.PreferenceUsecase
	PushSender        service.PushSender
	EventPublisher    service.EventPublisher
	Clock             service.Clock
	Logger            *slog.Logger
}

// NewExperimentService creates a new A/B experiment service instance
func NewExperimentService(params ExperimentServiceParams) usecase.ExperimentUsecase {
	return &experimentService{
		repo:        params.ExperimentRepo,
		patterns:    params.PatternUsecase,
		preferences: params.PreferenceUsecase,
		pusher:      params.PushSender,
		publisher:   params.EventPublisher,
		clock:       params.Clock,
		logger:      params.Logger,
	}
}

// CreateTest validates and persists an experiment definition.
func (s *experimentService) CreateTest(ctx context.Context, test *entity.ABTest) (*entity.ABTest, error) {
	if err := validateTest(test); err != nil {
		return nil, err
	}

	test.ID = uuid.New()
	test.CreatedAt = s.clock.Now()
	if test.Status == "" {
		test.Status = entity.TestStatusRunning
	}
	if test.PrimaryMetric == "" {
		test.PrimaryMetric = entity.MetricOpenRate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.tests = append(s.tests, test)
	if err := s.repo.SaveTests(ctx, s.tests); err != nil {
		return nil, errors.Wrap(err, "failed to save experiments")
	}

	s.logger.InfoContext(ctx, "experiment created",
		slog.String("test_id", test.ID.String()), slog.String("name", test.Name))

	return test, nil
}

// ListTests returns every experiment definition.
func (s *experimentService) ListTests(ctx context.Context) ([]*entity.ABTest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	return append([]*entity.ABTest(nil), s.tests...), nil
}

// ListActiveTests returns the running experiments at the instant.
func (s *experimentService) ListActiveTests(ctx context.Context, now time.Time) ([]*entity.ABTest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	active := make([]*entity.ABTest, 0)
	for _, test := range s.tests {
		if testActive(test, now) {
			active = append(active, test)
		}
	}

	return active, nil
}

// AssignVariant deterministically buckets the user into a variant. The
// same user always lands in the same variant of the same test. It
// returns nil when the test is not running or the user falls outside the
// target audience.
func (s *experimentService) AssignVariant(ctx context.Context, testID uuid.UUID, userID string) (*entity.ABTestVariant, error) {
	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()

		return nil, err
	}
	test := s.findTest(testID)
	s.mu.Unlock()

	if test == nil {
		return nil, domainerrors.ErrTestNotFound
	}
	if !testActive(test, s.clock.Now()) {
		return nil, nil
	}

	inAudience, err := s.matchesAudience(ctx, &test.Audience, userID)
	if err != nil {
		return nil, err
	}
	if !inAudience {
		return nil, nil
	}

	return pickVariant(test, bucketFor(userID, testID)), nil
}

// SendTestNotification merges the assigned variant's override onto the
// base content, delivers it and records a result row. It returns nil
// when no variant applies to the user.
func (s *experimentService) SendTestNotification(ctx context.Context, base entity.NotificationContent, testID uuid.UUID, userID string) (*entity.ABTestResult, error) {
	variant, err := s.AssignVariant(ctx, testID, userID)
	if err != nil || variant == nil {
		return nil, err
	}

	now := s.clock.Now()
	notification := &entity.ScheduledNotification{
		ID:          uuid.New(),
		UserID:      userID,
		Content:     mergeOverride(base, variant.Override),
		ScheduledAt: now,
		Sent:        true,
		SentAt:      &now,
		Attempts:    1,
		CreatedAt:   now,
	}

	if err := s.pusher.Deliver(ctx, notification); err != nil {
		return nil, domainerrors.ErrDeliveryFailed.WithDetails(err.Error())
	}

	result := &entity.ABTestResult{
		TestID:         testID,
		VariantID:      variant.ID,
		UserID:         userID,
		NotificationID: notification.ID,
		SentAt:         now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)

	return result, errors.Wrap(s.repo.SaveResults(ctx, s.results), "failed to save experiment results")
}

// RecordOutcome updates the matching result row for an opened, clicked or
// converted event. A click on a never-opened row marks it opened at the
// same instant. It reports whether a row was found.
func (s *experimentService) RecordOutcome(ctx context.Context, testID, notificationID uuid.UUID, userID string, kind entity.InteractionKind, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}

	var row *entity.ABTestResult
	for _, candidate := range s.results {
		if candidate.TestID == testID && candidate.NotificationID == notificationID && candidate.UserID == userID {
			row = candidate

			break
		}
	}
	if row == nil {
		return false, nil
	}

	markOpened := func(instant time.Time) {
		if row.Opened {
			return
		}
		row.Opened = true
		row.OpenedAt = &instant
		row.ResponseMinutes = int(instant.Sub(row.SentAt) / time.Minute)
	}

	switch kind {
	case entity.InteractionOpened:
		markOpened(at)
	case entity.InteractionClicked:
		markOpened(at)
		if !row.Clicked {
			row.Clicked = true
			row.ClickedAt = &at
		}
	case entity.InteractionConverted:
		if !row.Converted {
			row.Converted = true
			row.ConvertedAt = &at
		}
	}

	return true, errors.Wrap(s.repo.SaveResults(ctx, s.results), "failed to save experiment results")
}

// Analyze computes the comparative per-variant report for a test.
func (s *experimentService) Analyze(ctx context.Context, testID uuid.UUID) (*entity.ABTestReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	test := s.findTest(testID)
	if test == nil {
		return nil, domainerrors.ErrTestNotFound
	}

	return s.buildReport(test), nil
}

// CompleteFinishedTests transitions running tests to completed once
// their end date has passed, or once the results meet both the sample
// size and the significance thresholds. Invoked by the maintenance job.
func (s *experimentService) CompleteFinishedTests(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	var completed []*entity.ABTest
	for _, test := range s.tests {
		if test.Status != entity.TestStatusRunning {
			continue
		}

		expired := test.EndAt != nil && now.After(*test.EndAt)
		if !expired {
			report := s.buildReport(test)
			if !report.Significant || participantTotal(report) < test.MinimumSampleSize {
				continue
			}
		}

		test.Status = entity.TestStatusCompleted
		completed = append(completed, test)
	}

	if len(completed) == 0 {
		return nil
	}

	if err := s.repo.SaveTests(ctx, s.tests); err != nil {
		return errors.Wrap(err, "failed to save experiments")
	}

	for _, test := range completed {
		s.logger.InfoContext(ctx, "experiment completed",
			slog.String("test_id", test.ID.String()), slog.String("name", test.Name))
		event := &service.EngineEvent{
			Type:       service.EventExperimentCompleted,
			TestID:     test.ID.String(),
			OccurredAt: now.Format(time.RFC3339),
		}
		if err := s.publisher.PublishEngineEvent(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish completion event",
				slog.String("test_id", test.ID.String()), slog.Any("error", err))
		}
	}

	return nil
}

// PurgeResultsOlderThan drops result rows sent before the cutoff.
func (s *experimentService) PurgeResultsOlderThan(ctx context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	kept := s.results[:0]
	for _, row := range s.results {
		if !row.SentAt.Before(cutoff) {
			kept = append(kept, row)
		}
	}

	if len(kept) == len(s.results) {
		return nil
	}

	s.results = kept

	return errors.Wrap(s.repo.SaveResults(ctx, s.results), "failed to save experiment results")
}

// participantTotal sums the participants across every variant of a
// report, control included.
func participantTotal(report *entity.ABTestReport) int {
	total := 0
	for _, variant := range report.Variants {
		total += variant.Participants
	}

	return total
}

// buildReport aggregates result rows into the comparative report.
// Callers hold the mutex.
func (s *experimentService) buildReport(test *entity.ABTest) *entity.ABTestReport {
	type tally struct {
		participants, opened, clicked, converted int
	}
	tallies := make(map[string]*tally, len(test.Variants))
	for _, variant := range test.Variants {
		tallies[variant.ID] = &tally{}
	}
	for _, row := range s.results {
		if row.TestID != test.ID {
			continue
		}
		t, ok := tallies[row.VariantID]
		if !ok {
			continue
		}
		t.participants++
		if row.Opened {
			t.opened++
		}
		if row.Clicked {
			t.clicked++
		}
		if row.Converted {
			t.converted++
		}
	}

	report := &entity.ABTestReport{
		TestID:        test.ID,
		Status:        test.Status,
		PrimaryMetric: test.PrimaryMetric,
		Variants:      make([]entity.VariantReport, 0, len(test.Variants)),
	}

	var control *entity.VariantReport
	for _, variant := range test.Variants {
		t := tallies[variant.ID]
		vr := entity.VariantReport{
			VariantID:    variant.ID,
			Name:         variant.Name,
			IsControl:    variant.IsControl,
			Participants: t.participants,
		}
		if t.participants > 0 {
			vr.OpenRate = float64(t.opened) / float64(t.participants)
			vr.ClickRate = float64(t.clicked) / float64(t.participants)
			vr.ConversionRate = float64(t.converted) / float64(t.participants)
		}
		vr.EngagementScore = 0.4*vr.OpenRate + 0.3*vr.ClickRate + 0.3*vr.ConversionRate
		report.Variants = append(report.Variants, vr)
		if variant.IsControl {
			control = &report.Variants[len(report.Variants)-1]
		}
	}
	if control == nil {
		return report
	}

	minSample, ok := minSamplePerConfidence[test.ConfidenceLevel]
	if !ok {
		minSample = minSamplePerConfidence[95]
	}
	minDiff, ok := diffPerConfidence[test.ConfidenceLevel]
	if !ok {
		minDiff = diffPerConfidence[95]
	}

	enoughSamples := true
	maxDiff := 0.0
	controlValue := metricValue(*control, test.PrimaryMetric)
	var winner *entity.VariantReport
	for i := range report.Variants {
		vr := &report.Variants[i]
		if vr.Participants < minSample {
			enoughSamples = false
		}
		value := metricValue(*vr, test.PrimaryMetric)
		if !vr.IsControl {
			maxDiff = math.Max(maxDiff, math.Abs(value-controlValue))
		}
		if winner == nil || value > metricValue(*winner, test.PrimaryMetric) {
			winner = vr
		}
	}

	report.Significant = enoughSamples && maxDiff > minDiff

	if winner != nil && !winner.IsControl {
		report.WinnerVariantID = winner.VariantID
		if controlValue > 0 {
			report.Improvement = 100 * (metricValue(*winner, test.PrimaryMetric) - controlValue) / controlValue
		}
	}

	report.Recommendations = recommendations(report, winner, enoughSamples)

	return report
}

// recommendations turns the report state into the advisory strings
// surfaced in the analysis response.
func recommendations(report *entity.ABTestReport, winner *entity.VariantReport, enoughSamples bool) []string {
	if !enoughSamples {
		return []string{"Collect more data before drawing conclusions; variant sample sizes are below the confidence threshold."}
	}
	if !report.Significant {
		return []string{"No clear winner; the variant differences are within noise."}
	}
	if winner == nil || winner.IsControl {
		return []string{"The control performs best; keep the current content."}
	}

	return []string{fmt.Sprintf("Roll out %q; it outperforms the control by %.1f%% on %s.",
		winner.Name, report.Improvement, report.PrimaryMetric)}
}

// metricValue extracts the primary metric from a variant report.
func metricValue(vr entity.VariantReport, metric entity.MetricName) float64 {
	switch metric {
	case entity.MetricClickRate:
		return vr.ClickRate
	case entity.MetricConversionRate:
		return vr.ConversionRate
	case entity.MetricEngagement:
		return vr.EngagementScore
	default:
		return vr.OpenRate
	}
}

// bucketFor hashes user and test into a stable 0-99 bucket. The hash is
// truncated to 32 bits so the bucket is reproducible across platforms.
func bucketFor(userID string, testID uuid.UUID) int {
	var h int32
	for _, ch := range userID + testID.String() {
		h = h*31 + ch
	}

	bucket := int64(h)
	if bucket < 0 {
		bucket = -bucket
	}

	return int(bucket % 100)
}

// pickVariant walks the variants in definition order until the
// cumulative weight reaches the bucket. The walk is part of the
// assignment contract: reordering variants or changing the comparison
// would silently reassign existing users.
func pickVariant(test *entity.ABTest, bucket int) *entity.ABTestVariant {
	cumulative := 0.0
	for i := range test.Variants {
		cumulative += test.Variants[i].Weight
		if cumulative >= float64(bucket) {
			return &test.Variants[i]
		}
	}

	return &test.Variants[len(test.Variants)-1]
}

// mergeOverride applies the variant's non-empty override fields onto the
// base content.
func mergeOverride(base entity.NotificationContent, override entity.ContentOverride) entity.NotificationContent {
	if override.Title != "" {
		base.Title = override.Title
	}
	if override.Body != "" {
		base.Body = override.Body
	}
	if override.ImageURL != "" {
		base.ImageURL = override.ImageURL
	}
	if len(override.Data) > 0 {
		merged := make(map[string]string, len(base.Data)+len(override.Data))
		for k, v := range base.Data {
			merged[k] = v
		}
		for k, v := range override.Data {
			merged[k] = v
		}
		base.Data = merged
	}

	return base
}

// matchesAudience evaluates the AND-combined audience filters against
// the user's pattern and preferences.
func (s *experimentService) matchesAudience(ctx context.Context, audience *entity.TargetAudience, userID string) (bool, error) {
	engagement := entity.DefaultEngagementScore
	pattern, err := s.patterns.GetPattern(ctx, userID)
	if err != nil {
		return false, err
	}
	if pattern != nil {
		engagement = pattern.EngagementScore
	}

	if audience.MinEngagementScore != nil && engagement < *audience.MinEngagementScore {
		return false, nil
	}
	if audience.MaxEngagementScore != nil && engagement > *audience.MaxEngagementScore {
		return false, nil
	}

	if len(audience.DeviceClasses) == 0 && len(audience.Timezones) == 0 && len(audience.Segments) == 0 {
		return true, nil
	}

	prefs, err := s.preferences.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	if len(audience.DeviceClasses) > 0 && !contains(audience.DeviceClasses, prefs.DeviceClass) {
		return false, nil
	}
	if len(audience.Timezones) > 0 && !contains(audience.Timezones, prefs.Timezone) {
		return false, nil
	}
	for _, segment := range audience.Segments {
		if !contains(prefs.Segments, segment) {
			return false, nil
		}
	}

	return true, nil
}

// validateTest checks the structural invariants of a definition.
func validateTest(test *entity.ABTest) error {
	if test.Name == "" {
		return domainerrors.ErrInvalidTestDefinition.WithDetails("name is required")
	}
	if test.Status != "" && test.Status != entity.TestStatusDraft && test.Status != entity.TestStatusRunning {
		return domainerrors.ErrInvalidTestDefinition.WithDetails("status must be draft or running")
	}
	if len(test.Variants) < 2 {
		return domainerrors.ErrInvalidTestDefinition.WithDetails("a test needs at least two variants")
	}

	weightSum := 0.0
	controls := 0
	for _, variant := range test.Variants {
		if variant.ID == "" {
			return domainerrors.ErrInvalidTestDefinition.WithDetails("every variant needs an id")
		}
		if variant.Weight < 0 {
			return domainerrors.ErrInvalidTestDefinition.WithDetails("variant weights must be non-negative")
		}
		weightSum += variant.Weight
		if variant.IsControl {
			controls++
		}
	}
	if math.Abs(weightSum-100) > 0.1 {
		return domainerrors.ErrInvalidTestDefinition.WithDetails(
			fmt.Sprintf("variant weights must sum to 100, got %.2f", weightSum))
	}
	if controls != 1 {
		return domainerrors.ErrInvalidTestDefinition.WithDetails("exactly one variant must be the control")
	}
	if test.EndAt != nil && !test.EndAt.After(test.StartAt) {
		return domainerrors.ErrInvalidTestDefinition.WithDetails("endAt must be after startAt")
	}
	if test.MinimumSampleSize < entity.MinimumSampleSizeFloor {
		return domainerrors.ErrInvalidTestDefinition.WithDetails(
			fmt.Sprintf("minimumSampleSize must be at least %d", entity.MinimumSampleSizeFloor))
	}

	return nil
}

// testActive reports whether the test accepts assignments at the
// instant.
func testActive(test *entity.ABTest, now time.Time) bool {
	if test.Status != entity.TestStatusRunning {
		return false
	}
	if now.Before(test.StartAt) {
		return false
	}
	if test.EndAt != nil && now.After(*test.EndAt) {
		return false
	}

	return true
}

// findTest locates a definition by ID. Callers hold the mutex.
func (s *experimentService) findTest(testID uuid.UUID) *entity.ABTest {
	for _, test := range s.tests {
		if test.ID == testID {
			return test
		}
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}

// ensureLoaded restores definitions and results on first use. Callers
// hold the mutex.
func (s *experimentService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	tests, err := s.repo.LoadTests(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load experiments")
	}
	results, err := s.repo.LoadResults(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load experiment results")
	}

	s.tests = tests
	s.results = results
	s.loaded = true

	return nil
}
