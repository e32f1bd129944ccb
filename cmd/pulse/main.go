package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"pulse/config"
	"pulse/internal/delivery"
	"pulse/internal/delivery/http"
	"pulse/internal/delivery/http/router/handler"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	logs "pulse/internal/infra/log"
	"pulse/internal/infra/notification"
	"pulse/internal/infra/persistence/kv"
	"pulse/internal/infra/persistence/memory"
	"pulse/internal/infra/persistence/redis"
	"pulse/internal/infra/pubsub"
	"pulse/internal/infra/scheduler"
	"pulse/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		scheduler.NewSystemClock,
		newKeyValueStore,
	)
}

// newKeyValueStore picks the durable store: Redis when configured, the
// in-process map otherwise.
func newKeyValueStore(params redis.Params, logger *slog.Logger) (repository.KeyValueStore, error) {
	if params.Config.Redis == nil {
		logger.Info("Redis not configured, using in-memory store")

		return memory.New(), nil
	}

	return redis.New(params)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			kv.NewScheduleRepository,
			kv.NewPatternRepository,
			kv.NewAnalyticsRepository,
			kv.NewExperimentRepository,
			kv.NewPreferenceRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newPushSender,
			pubsub.NewEventPublisher,
		),
	)
}

// newPushSender creates the push transport with dependency injection
func newPushSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.PushSender, error) {
	if cfg.Firebase == nil {
		logger.Info("Firebase not configured, using log-only sender")

		return notification.NewLogSender(logger), nil
	}

	sender, err := notification.NewFCMSender(ctx, cfg.Firebase.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create FCM sender: %w", err)
	}

	return sender, nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewPreferenceService,
			impl.NewPatternService,
			impl.NewAnalyticsService,
			impl.NewScheduleService,
			impl.NewExperimentService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewScheduleHandler,
			handler.NewActivityHandler,
			handler.NewAnalyticsHandler,
			handler.NewExperimentHandler,
			handler.NewPreferenceHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				scheduler.New,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
