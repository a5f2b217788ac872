package app

import (
	"sync/atomic"
	"time"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

// Stats aggregates task outcomes for one batch. All methods are safe for
// concurrent use; only the counter updates are synchronised.
type Stats struct {
	downloaded atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
	missed     atomic.Int64

	transferred atomic.Int64

	answersSize    atomic.Int64
	assessmentSize atomic.Int64
	exemplarSize   atomic.Int64
	totalSize      atomic.Int64
}

// NewStats creates an empty aggregator
func NewStats() *Stats {
	return &Stats{}
}

// Record counts exactly one outcome. Missed outcomes count as failures and
// are also tracked separately.
func (s *Stats) Record(o domain.Outcome) {
	switch o.Kind {
	case domain.OutcomeDownloaded:
		s.downloaded.Add(1)
		s.transferred.Add(o.Bytes)
	case domain.OutcomeSkipped:
		s.skipped.Add(1)
	case domain.OutcomeMissed:
		s.missed.Add(1)
		s.failed.Add(1)
	default:
		s.failed.Add(1)
	}
}

// AddDiskUsage adds on-disk bytes for a category
func (s *Stats) AddDiskUsage(category domain.Category, bytes int64) {
	switch category {
	case domain.CategoryAnswers:
		s.answersSize.Add(bytes)
	case domain.CategoryAssessment:
		s.assessmentSize.Add(bytes)
	case domain.CategoryExemplar:
		s.exemplarSize.Add(bytes)
	}
}

// AddTotalSize adds on-disk bytes to the grand total
func (s *Stats) AddTotalSize(bytes int64) {
	s.totalSize.Add(bytes)
}

// Recorded returns the number of outcomes recorded so far
func (s *Stats) Recorded() int64 {
	return s.downloaded.Load() + s.skipped.Load() + s.failed.Load()
}

// Snapshot computes the derived fields. It is meant to be called once all
// workers have joined.
func (s *Stats) Snapshot(elapsed time.Duration) *domain.StatsSnapshot {
	snap := &domain.StatsSnapshot{
		Downloaded:       s.downloaded.Load(),
		Skipped:          s.skipped.Load(),
		Failed:           s.failed.Load(),
		Missed:           s.missed.Load(),
		Elapsed:          elapsed,
		AnswersSize:      s.answersSize.Load(),
		AssessmentSize:   s.assessmentSize.Load(),
		ExemplarSize:     s.exemplarSize.Load(),
		TotalSize:        s.totalSize.Load(),
		BytesTransferred: s.transferred.Load(),
	}
	snap.Total = snap.Downloaded + snap.Skipped + snap.Failed
	if snap.Total > 0 {
		snap.Percentage = float64(snap.Downloaded) / float64(snap.Total) * 100
	}
	return snap
}
