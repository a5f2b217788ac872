package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/ncea-extract-go/internal/domain"
	"github.com/yourusername/ncea-extract-go/pkg/logger"
)

// ErrBatchRunning is returned when a batch is started while another is in progress
var ErrBatchRunning = errors.New("a batch is already running")

// BatchManager runs at most one batch in the background for the API server
type BatchManager struct {
	scheduler   *Scheduler
	config      *domain.DownloadConfig
	multiLogger *logger.MultiLogger
	mu          sync.RWMutex
	running     bool
	current     *domain.Run
	last        *domain.StatsSnapshot
	workerWg    sync.WaitGroup
}

// NewBatchManager creates a new batch manager
func NewBatchManager(scheduler *Scheduler, config *domain.DownloadConfig, multiLogger *logger.MultiLogger) *BatchManager {
	return &BatchManager{
		scheduler:   scheduler,
		config:      config,
		multiLogger: multiLogger,
	}
}

// Start launches a batch and returns a copy of its run record immediately.
// Empty years or kinds fall back to the configured defaults.
func (bm *BatchManager) Start(ctx context.Context, ids []domain.StandardID, years []int, kinds []domain.ComponentKind) (*domain.Run, error) {
	if len(ids) == 0 {
		return nil, domain.ErrInvalidStandard
	}
	if len(years) == 0 {
		years = bm.config.Years
	}
	if len(kinds) == 0 {
		kinds = bm.config.Kinds
	}

	bm.mu.Lock()
	if bm.running {
		bm.mu.Unlock()
		return nil, ErrBatchRunning
	}
	run := domain.NewRun(dedupe(ids))
	bm.running = true
	bm.current = run
	bm.mu.Unlock()

	// the background batch keeps mutating run
	started := *run

	bm.workerWg.Add(1)
	go func() {
		defer bm.workerWg.Done()

		snapshot, err := bm.scheduler.Execute(ctx, run, ids, years, kinds)
		if err != nil && bm.multiLogger != nil {
			bm.multiLogger.LogAppError("Background batch failed",
				zap.String("run_id", run.ID),
				zap.Error(err))
		}

		bm.mu.Lock()
		bm.running = false
		bm.current = nil
		if snapshot != nil {
			bm.last = snapshot
		}
		bm.mu.Unlock()
	}()

	return &started, nil
}

// IsRunning returns whether a batch is in progress
func (bm *BatchManager) IsRunning() bool {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return bm.running
}

// Current returns the ID of the running batch, or "" when idle
func (bm *BatchManager) Current() string {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	if bm.current == nil {
		return ""
	}
	return bm.current.ID
}

// LastSnapshot returns the statistics of the most recently finished batch
func (bm *BatchManager) LastSnapshot() *domain.StatsSnapshot {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return bm.last
}

// Wait blocks until the running batch, if any, has finished
func (bm *BatchManager) Wait() {
	bm.workerWg.Wait()
}
