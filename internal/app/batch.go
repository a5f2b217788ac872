package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/ncea-extract-go/internal/domain"
	"github.com/yourusername/ncea-extract-go/internal/infrastructure"
	"github.com/yourusername/ncea-extract-go/internal/metrics"
	"github.com/yourusername/ncea-extract-go/pkg/logger"
)

// Scheduler fans download tasks out onto a bounded worker pool
type Scheduler struct {
	catalog  domain.Catalog
	resolver *Resolver
	baseDir  string
	workers  int
	history  domain.RunRepository
	notifier *infrastructure.NotificationService
	metrics  *metrics.Recorder
	events   *logger.MultiLogger
	logger   *zap.Logger
}

// SchedulerOption configures optional collaborators
type SchedulerOption func(*Scheduler)

// WithHistory records runs and task outcomes in repo
func WithHistory(repo domain.RunRepository) SchedulerOption {
	return func(s *Scheduler) { s.history = repo }
}

// WithNotifier sends desktop notifications
func WithNotifier(n *infrastructure.NotificationService) SchedulerOption {
	return func(s *Scheduler) { s.notifier = n }
}

// WithMetrics counts outcomes on recorder
func WithMetrics(recorder *metrics.Recorder) SchedulerOption {
	return func(s *Scheduler) { s.metrics = recorder }
}

// WithEventLog writes batch lifecycle events to the categorised log files
func WithEventLog(ml *logger.MultiLogger) SchedulerOption {
	return func(s *Scheduler) { s.events = ml }
}

// NewScheduler creates a batch scheduler
func NewScheduler(
	catalog domain.Catalog,
	resolver *Resolver,
	config *domain.DownloadConfig,
	log *zap.Logger,
	opts ...SchedulerOption,
) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	workers := config.ConcurrentLimit
	if workers < 1 {
		workers = 1
	}
	s := &Scheduler{
		catalog:  catalog,
		resolver: resolver,
		baseDir:  config.BaseDir,
		workers:  workers,
		logger:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run resolves every (standard, year, kind) combination and returns the
// final statistics. Per-task and per-standard failures never abort the
// batch; only failing to create the destination root does.
func (s *Scheduler) Run(ctx context.Context, ids []domain.StandardID, years []int, kinds []domain.ComponentKind) (*domain.StatsSnapshot, error) {
	return s.Execute(ctx, domain.NewRun(ids), ids, years, kinds)
}

// Execute is Run for a run record created by the caller
func (s *Scheduler) Execute(ctx context.Context, run *domain.Run, ids []domain.StandardID, years []int, kinds []domain.ComponentKind) (*domain.StatsSnapshot, error) {
	start := time.Now()
	stats := NewStats()
	ids = dedupe(ids)

	s.logger.Info("Starting batch",
		zap.String("run_id", run.ID),
		zap.Int("standards", len(ids)),
		zap.Int("years", len(years)),
		zap.Int("kinds", len(kinds)),
		zap.Int("workers", s.workers))
	s.event("batch_started", zap.String("run_id", run.ID), zap.Int("standards", len(ids)))

	if s.history != nil {
		if err := s.history.CreateRun(run); err != nil {
			s.logger.Warn("Failed to record run", zap.Error(err))
		}
	}

	if err := infrastructure.EnsureDir(s.baseDir); err != nil {
		s.abort(run, err)
		return nil, err
	}

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	var accounting sync.WaitGroup

	for _, id := range ids {
		dir, err := s.standardDir(ctx, id)
		if err != nil {
			s.logger.Error("Skipping standard", zap.String("standard", string(id)), zap.Error(err))
			s.event("standard_skipped", zap.String("standard", string(id)), zap.Error(err))
			s.notifier.NotifyStandardSkipped(id, err)
			continue
		}

		var pending sync.WaitGroup
		for _, year := range years {
			for _, kind := range kinds {
				task := domain.DownloadTask{Standard: id, Year: year, Kind: kind, DestDir: dir}
				pending.Add(1)
				g.Go(func() error {
					defer pending.Done()
					s.runTask(ctx, run, stats, task)
					return nil
				})
			}
		}

		accounting.Add(1)
		go func(id domain.StandardID, dir string) {
			defer accounting.Done()
			pending.Wait()
			s.accountSizes(stats, id, dir, kinds)
		}(id, dir)
	}

	g.Wait()
	accounting.Wait()

	snapshot := stats.Snapshot(time.Since(start))

	s.logger.Info("Batch completed",
		zap.String("run_id", run.ID),
		zap.Int64("downloaded", snapshot.Downloaded),
		zap.Int64("skipped", snapshot.Skipped),
		zap.Int64("failed", snapshot.Failed),
		zap.Int64("missed", snapshot.Missed),
		zap.Duration("elapsed", snapshot.Elapsed))
	s.event("batch_completed",
		zap.String("run_id", run.ID),
		zap.Int64("total", snapshot.Total),
		zap.Int64("downloaded", snapshot.Downloaded),
		zap.Int64("failed", snapshot.Failed))

	if s.history != nil {
		run.MarkCompleted(snapshot)
		if err := s.history.UpdateRun(run); err != nil {
			s.logger.Warn("Failed to update run", zap.Error(err))
		}
	}
	s.notifier.NotifyBatchCompleted(snapshot)

	return snapshot, nil
}

// standardDir looks up the standard and creates BaseDir/<component>/<subject id>
func (s *Scheduler) standardDir(ctx context.Context, id domain.StandardID) (string, error) {
	standard, err := s.catalog.Lookup(ctx, id)
	if err != nil {
		return "", fmt.Errorf("metadata lookup: %w", err)
	}

	s.logger.Info("Standard found",
		zap.String("standard", string(standard.ID)),
		zap.String("title", standard.Title),
		zap.String("credits", standard.Credits),
		zap.String("assessment", standard.Assessment),
		zap.String("level", standard.Level))

	component, subject, err := standard.Layout()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.baseDir, component, subject)
	if err := infrastructure.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// runTask resolves one task and records its outcome exactly once
func (s *Scheduler) runTask(ctx context.Context, run *domain.Run, stats *Stats, task domain.DownloadTask) {
	outcome := s.resolver.Resolve(ctx, task)

	stats.Record(outcome)
	s.metrics.ObserveOutcome(task.Kind, outcome)

	if s.history != nil {
		if err := s.history.AddTaskRecord(domain.NewTaskRecord(run.ID, task, outcome)); err != nil {
			s.logger.Warn("Failed to record task outcome",
				zap.String("task", task.String()),
				zap.Error(err))
		}
	}

	s.event("task_completed",
		zap.String("run_id", run.ID),
		zap.String("standard", string(task.Standard)),
		zap.Int("year", task.Year),
		zap.String("kind", string(task.Kind)),
		zap.String("outcome", string(outcome.Kind)),
		zap.String("provider", outcome.Provider))
}

// accountSizes adds the on-disk sizes of one standard. Callers must wait
// for all of that standard's tasks first.
func (s *Scheduler) accountSizes(stats *Stats, id domain.StandardID, dir string, kinds []domain.ComponentKind) {
	for _, kind := range kinds {
		size, err := infrastructure.DirSize(filepath.Join(dir, string(kind)))
		if err != nil {
			s.logger.Warn("Failed to measure directory", zap.String("standard", string(id)), zap.Error(err))
			continue
		}
		stats.AddDiskUsage(kind.Category(), size)
	}

	total, err := infrastructure.DirSize(dir)
	if err != nil {
		s.logger.Warn("Failed to measure directory", zap.String("standard", string(id)), zap.Error(err))
		return
	}
	stats.AddTotalSize(total)
}

func (s *Scheduler) abort(run *domain.Run, err error) {
	s.logger.Error("Batch aborted", zap.String("run_id", run.ID), zap.Error(err))
	if s.events != nil {
		s.events.LogAppError("Batch aborted", zap.String("run_id", run.ID), zap.Error(err))
	}
	if s.history != nil {
		run.MarkAborted(err)
		if uerr := s.history.UpdateRun(run); uerr != nil {
			s.logger.Warn("Failed to update run", zap.Error(uerr))
		}
	}
}

func (s *Scheduler) event(name string, fields ...zap.Field) {
	if s.events != nil {
		s.events.LogBatchEvent(name, fields...)
	}
}

func dedupe(ids []domain.StandardID) []domain.StandardID {
	seen := make(map[domain.StandardID]bool, len(ids))
	out := make([]domain.StandardID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
