package app

import (
	"context"
	"fmt"
	"log/slog"

	"OlympiaTracker/internal/bus"
	"OlympiaTracker/internal/config"
	"OlympiaTracker/internal/domain"
	"OlympiaTracker/internal/enumerator"
	"OlympiaTracker/internal/infrastructure/store"
	"OlympiaTracker/internal/logging"
	"OlympiaTracker/internal/scraper"
	"OlympiaTracker/internal/usecase"
)

// Application wires configuration into the two execution contexts and
// exposes one method per trigger operation.
type Application struct {
	cfg         config.Config
	coordinator *usecase.Coordinator
	worker      *bus.Worker
}

// New builds a runnable application instance: a scraper-context worker on
// one side of the bus, the coordinator and store client on the other.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	scr, err := scraper.New(cfg.Site, cfg.Forum.Sections, baseLogger.With("component", "scraper"))
	if err != nil {
		return nil, fmt.Errorf("build scraper: %w", err)
	}

	enum := enumerator.New(scr, cfg.Scan, baseLogger.With("component", "enumerator"))

	messageBus := bus.New(cfg.Bus.Timeout())
	worker := bus.NewWorker(messageBus, enum, scr, baseLogger.With("component", "scraper-worker"))

	coordinator := usecase.NewCoordinator(usecase.CoordinatorDeps{
		Extractor: bus.NewClient(messageBus),
		Store:     store.NewClient(cfg.Store, baseLogger.With("component", "store")),
		Logger:    baseLogger.With("component", "coordinator"),
	})

	return &Application{
		cfg:         cfg,
		coordinator: coordinator,
		worker:      worker,
	}, nil
}

// EnumerateCharacters discovers every profile and synchronizes each one.
func (a *Application) EnumerateCharacters(ctx context.Context) (usecase.Report, error) {
	return a.run(ctx, a.coordinator.SyncCharacters)
}

// SyncActivityLog ingests the current territory's activity log.
func (a *Application) SyncActivityLog(ctx context.Context) (usecase.Report, error) {
	return a.run(ctx, a.coordinator.SyncEvents)
}

// SyncForumSection drains and ingests one forum section.
func (a *Application) SyncForumSection(ctx context.Context, section domain.ForumSection) (usecase.Report, error) {
	return a.run(ctx, func(ctx context.Context) (usecase.Report, error) {
		return a.coordinator.SyncForums(ctx, section)
	})
}

// run scopes a scraper context to one triggered operation: the worker lives
// exactly as long as the sync that needs it.
func (a *Application) run(ctx context.Context, sync func(context.Context) (usecase.Report, error)) (usecase.Report, error) {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		_ = a.worker.Serve(workerCtx)
	}()

	return sync(ctx)
}
