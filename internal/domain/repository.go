package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run ID is unknown
var ErrRunNotFound = errors.New("run not found")

// RunStatus represents the state of a batch run
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunAborted   RunStatus = "aborted"
)

// Run is one batch invocation recorded in the history
type Run struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	Standards      string     `json:"standards" gorm:"not null"` // comma separated
	Status         RunStatus  `json:"status" gorm:"not null;index"`
	Downloaded     int64      `json:"downloaded"`
	Skipped        int64      `json:"skipped"`
	Failed         int64      `json:"failed"`
	Missed         int64      `json:"missed"`
	Total          int64      `json:"total"`
	Percentage     float64    `json:"percentage"`
	ElapsedMillis  int64      `json:"elapsed_ms"`
	AnswersSize    int64      `json:"answers_size"`
	AssessmentSize int64      `json:"assessment_size"`
	ExemplarSize   int64      `json:"exemplar_size"`
	TotalSize      int64      `json:"total_size"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	StartedAt      time.Time  `json:"started_at" gorm:"autoCreateTime;index"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// NewRun creates a run record for a set of standards
func NewRun(standards []StandardID) *Run {
	ids := make([]string, len(standards))
	for i, s := range standards {
		ids[i] = string(s)
	}
	return &Run{
		ID:        uuid.New().String(),
		Standards: strings.Join(ids, ","),
		Status:    RunRunning,
		StartedAt: time.Now(),
	}
}

// MarkCompleted copies the final snapshot into the run
func (r *Run) MarkCompleted(s *StatsSnapshot) {
	r.Status = RunCompleted
	r.Downloaded = s.Downloaded
	r.Skipped = s.Skipped
	r.Failed = s.Failed
	r.Missed = s.Missed
	r.Total = s.Total
	r.Percentage = s.Percentage
	r.ElapsedMillis = s.Elapsed.Milliseconds()
	r.AnswersSize = s.AnswersSize
	r.AssessmentSize = s.AssessmentSize
	r.ExemplarSize = s.ExemplarSize
	r.TotalSize = s.TotalSize
	now := time.Now()
	r.FinishedAt = &now
}

// MarkAborted marks the run as aborted by a setup error
func (r *Run) MarkAborted(err error) {
	r.Status = RunAborted
	r.ErrorMessage = err.Error()
	now := time.Now()
	r.FinishedAt = &now
}

// IsTerminal checks if the run has finished
func (r *Run) IsTerminal() bool {
	return r.Status == RunCompleted || r.Status == RunAborted
}

// TaskRecord is the recorded outcome of one download task
type TaskRecord struct {
	ID        uint          `json:"-" gorm:"primaryKey"`
	RunID     string        `json:"run_id" gorm:"not null;index"`
	Standard  StandardID    `json:"standard" gorm:"not null;index"`
	Year      int           `json:"year"`
	Kind      ComponentKind `json:"kind"`
	Outcome   OutcomeKind   `json:"outcome" gorm:"not null"`
	Reason    FailureReason `json:"reason,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Provider  string        `json:"provider,omitempty"`
	URL       string        `json:"url,omitempty"`
	Path      string        `json:"path,omitempty"`
	Bytes     int64         `json:"bytes"`
	Digest    string        `json:"digest,omitempty"`
	CreatedAt time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

// NewTaskRecord builds a history record for a task outcome
func NewTaskRecord(runID string, task DownloadTask, o Outcome) *TaskRecord {
	return &TaskRecord{
		RunID:    runID,
		Standard: task.Standard,
		Year:     task.Year,
		Kind:     task.Kind,
		Outcome:  o.Kind,
		Reason:   o.Reason,
		Detail:   o.Detail,
		Provider: o.Provider,
		URL:      o.URL,
		Path:     o.Path,
		Bytes:    o.Bytes,
		Digest:   o.Digest,
	}
}

// RunRepository defines the interface for run history persistence
type RunRepository interface {
	// CreateRun stores a new run
	CreateRun(run *Run) error

	// UpdateRun saves changes to an existing run
	UpdateRun(run *Run) error

	// AddTaskRecord appends a task outcome to a run
	AddTaskRecord(record *TaskRecord) error

	// FindRun finds a run by ID
	FindRun(id string) (*Run, error)

	// ListRuns returns the most recent runs first
	ListRuns(limit int) ([]*Run, error)

	// ListTaskRecords returns the task outcomes of a run
	ListTaskRecords(runID string) ([]*TaskRecord, error)
}
