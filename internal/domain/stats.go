package domain

import (
	"fmt"
	"time"
)

// StatsSnapshot is the read-only view of a finished batch
type StatsSnapshot struct {
	Downloaded int64 `json:"downloaded"`
	Skipped    int64 `json:"skipped"`
	Failed     int64 `json:"failed"` // includes Missed
	Missed     int64 `json:"missed"`
	Total      int64 `json:"total"`

	Percentage float64       `json:"percentage"`
	Elapsed    time.Duration `json:"elapsed"`

	AnswersSize    int64 `json:"answers_size"`
	AssessmentSize int64 `json:"assessment_size"`
	ExemplarSize   int64 `json:"exemplar_size"`
	TotalSize      int64 `json:"total_size"`

	BytesTransferred int64 `json:"bytes_transferred"`
}

// ElapsedString formats the elapsed time like "3 minutes 12 seconds"
func (s *StatsSnapshot) ElapsedString() string {
	secs := int64(s.Elapsed / time.Second)
	return fmt.Sprintf("%d minutes %d seconds", secs/60, secs%60)
}

// PercentageString formats the download percentage with two decimals
func (s *StatsSnapshot) PercentageString() string {
	return fmt.Sprintf("%.2f%%", s.Percentage)
}
