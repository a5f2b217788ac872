package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/ncea-extract-go/internal/domain"
	"github.com/yourusername/ncea-extract-go/internal/infrastructure"
	"github.com/yourusername/ncea-extract-go/internal/metrics"
	"github.com/yourusername/ncea-extract-go/pkg/logger"
)

// Runtime is the fully wired application shared by the CLI and the server
type Runtime struct {
	Config    *domain.Config
	Logger    *zap.Logger
	Events    *logger.MultiLogger
	History   *infrastructure.SQLiteRunRepository // nil when disabled
	Metrics   *metrics.Recorder
	Notifier  *infrastructure.NotificationService
	Scheduler *Scheduler
}

// NewRuntime builds every collaborator from config. Close releases them.
func NewRuntime(config *domain.Config) (*Runtime, error) {
	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &Runtime{
		Config:  config,
		Logger:  log,
		Metrics: metrics.NewRecorder(),
	}

	rt.Events, err = logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Download.LogsDir,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize event log: %w", err)
	}

	if config.History.Enabled {
		rt.History, err = infrastructure.NewSQLiteRunRepository(config.History.DatabasePath)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
	}

	providers, err := infrastructure.ProvidersFromConfig(config.Providers)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Notifier = infrastructure.NewNotificationService(&config.Notification, log)
	fetcher := infrastructure.NewHTTPFetcher(&config.Download, log)
	catalog := infrastructure.NewNZQACatalog(&config.Catalog, log)
	resolver := NewResolver(providers, fetcher, rt.Metrics, log)

	opts := []SchedulerOption{
		WithNotifier(rt.Notifier),
		WithMetrics(rt.Metrics),
		WithEventLog(rt.Events),
	}
	if rt.History != nil {
		opts = append(opts, WithHistory(rt.History))
	}
	rt.Scheduler = NewScheduler(catalog, resolver, &config.Download, log, opts...)

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	log.Debug("Runtime ready",
		zap.Strings("providers", names),
		zap.Int("workers", config.Download.ConcurrentLimit),
		zap.Bool("history", rt.History != nil))

	return rt, nil
}

// HistoryRepository returns the history as a domain.RunRepository, or a
// nil interface when history is disabled
func (rt *Runtime) HistoryRepository() domain.RunRepository {
	if rt.History == nil {
		return nil
	}
	return rt.History
}

// Close flushes logs and closes the history database
func (rt *Runtime) Close() error {
	var lastErr error
	if rt.History != nil {
		if err := rt.History.Close(); err != nil {
			lastErr = err
		}
	}
	if rt.Events != nil {
		if err := rt.Events.Close(); err != nil {
			lastErr = err
		}
	}
	if rt.Logger != nil {
		rt.Logger.Sync()
	}
	return lastErr
}
