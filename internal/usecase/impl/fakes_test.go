package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pulse/config"
	"pulse/internal/domain/entity"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	"pulse/internal/infra/persistence/kv"
	"pulse/internal/infra/persistence/memory"
	"pulse/internal/usecase"

	"github.com/pkg/errors"
)

// fakeClock is a settable time source shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeSender records deliveries and can be told to fail.
type fakeSender struct {
	mu        sync.Mutex
	delivered []*entity.ScheduledNotification
	failWith  error
}

func (s *fakeSender) Deliver(_ context.Context, n *entity.ScheduledNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}

	clone := *n
	s.delivered = append(s.delivered, &clone)

	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.delivered)
}

func (s *fakeSender) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// fakePublisher records engine events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*service.EngineEvent
}

func (p *fakePublisher) PublishEngineEvent(_ context.Context, event *service.EngineEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) byType(eventType string) []*service.EngineEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []*service.EngineEvent
	for _, event := range p.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}

	return matched
}

var errTransportDown = errors.New("transport down")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// testEngine bundles every service over one shared in-memory store, the
// way the application wires them.
type testEngine struct {
	store       repository.KeyValueStore
	clock       *fakeClock
	sender      *fakeSender
	publisher   *fakePublisher
	preferences usecase.PreferenceUsecase
	patterns    usecase.PatternUsecase
	analytics   usecase.AnalyticsUsecase
	scheduler   usecase.SchedulerUsecase
	experiments usecase.ExperimentUsecase
}

func newTestEngine(t *testing.T, now time.Time) *testEngine {
	t.Helper()

	logger := testLogger()
	store := memory.New()
	clock := newFakeClock(now)
	sender := &fakeSender{}
	publisher := &fakePublisher{}

	cfg := &config.Config{}
	cfg.Scheduler.MaxDeliveryAttempts = 3
	cfg.Scheduler.MaxPerTick = 100

	preferences := NewPreferenceService(PreferenceServiceParams{
		PreferenceRepo: kv.NewPreferenceRepository(store, logger),
	})
	patterns := NewPatternService(PatternServiceParams{
		PatternRepo: kv.NewPatternRepository(store, logger),
	})
	analytics := NewAnalyticsService(AnalyticsServiceParams{
		AnalyticsRepo:     kv.NewAnalyticsRepository(store, logger),
		PatternUsecase:    patterns,
		PreferenceUsecase: preferences,
		Clock:             clock,
		Logger:            logger,
	})
	scheduler := NewScheduleService(ScheduleServiceParams{
		Config:            cfg,
		ScheduleRepo:      kv.NewScheduleRepository(store, logger),
		PreferenceUsecase: preferences,
		PatternUsecase:    patterns,
		AnalyticsUsecase:  analytics,
		PushSender:        sender,
		EventPublisher:    publisher,
		Clock:             clock,
		Logger:            logger,
	})
	experiments := NewExperimentService(ExperimentServiceParams{
		ExperimentRepo:    kv.NewExperimentRepository(store, logger),
		PatternUsecase:    patterns,
		PreferenceUsecase: preferences,
		PushSender:        sender,
		EventPublisher:    publisher,
		Clock:             clock,
		Logger:            logger,
	})

	return &testEngine{
		store:       store,
		clock:       clock,
		sender:      sender,
		publisher:   publisher,
		preferences: preferences,
		patterns:    patterns,
		analytics:   analytics,
		scheduler:   scheduler,
		experiments: experiments,
	}
}
