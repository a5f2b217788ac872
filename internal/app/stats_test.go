package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

func TestStats_EmptyBatch(t *testing.T) {
	snap := NewStats().Snapshot(0)

	assert.Equal(t, int64(0), snap.Total)
	assert.Equal(t, 0.0, snap.Percentage)
	assert.Equal(t, "0.00%", snap.PercentageString())
	assert.Equal(t, "0 minutes 0 seconds", snap.ElapsedString())
}

func TestStats_RecordClassifies(t *testing.T) {
	s := NewStats()
	s.Record(domain.Downloaded("/a", 2048, ""))
	s.Record(domain.Skipped("/b"))
	s.Record(domain.Failed(domain.ReasonHTTPStatus, "status code 500"))
	s.Record(domain.Missed("3 providers tried"))

	snap := s.Snapshot(192 * time.Second)

	assert.Equal(t, int64(1), snap.Downloaded)
	assert.Equal(t, int64(1), snap.Skipped)
	assert.Equal(t, int64(2), snap.Failed, "missed counts as failed")
	assert.Equal(t, int64(1), snap.Missed)
	assert.Equal(t, int64(4), snap.Total)
	assert.Equal(t, 25.0, snap.Percentage)
	assert.Equal(t, int64(2048), snap.BytesTransferred)
	assert.Equal(t, "3 minutes 12 seconds", snap.ElapsedString())
}

func TestStats_ConcurrentRecordsAreConserved(t *testing.T) {
	s := NewStats()
	outcomes := []domain.Outcome{
		domain.Downloaded("/a", 10, ""),
		domain.Skipped("/b"),
		domain.Failed(domain.ReasonTransport, "reset"),
		domain.Missed("none"),
	}

	const workers, perWorker = 8, 1000
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Record(outcomes[(w+i)%len(outcomes)])
				s.AddDiskUsage(domain.CategoryAnswers, 1)
			}
		}(w)
	}
	wg.Wait()

	snap := s.Snapshot(time.Second)
	assert.Equal(t, int64(workers*perWorker), snap.Total)
	assert.Equal(t, snap.Total, snap.Downloaded+snap.Skipped+snap.Failed)
	assert.Equal(t, int64(2000), snap.Downloaded)
	assert.Equal(t, int64(4000), snap.Failed)
	assert.Equal(t, int64(2000), snap.Missed)
	assert.Equal(t, int64(20000), snap.BytesTransferred)
	assert.Equal(t, int64(workers*perWorker), snap.AnswersSize)
	assert.Equal(t, s.Recorded(), snap.Total)
}

func TestStats_DiskUsageByCategory(t *testing.T) {
	s := NewStats()
	s.AddDiskUsage(domain.CategoryAnswers, 100)
	s.AddDiskUsage(domain.CategoryAssessment, 200)
	s.AddDiskUsage(domain.CategoryExemplar, 300)
	s.AddDiskUsage(domain.Category("unknown"), 999)
	s.AddTotalSize(600)

	snap := s.Snapshot(0)
	assert.Equal(t, int64(100), snap.AnswersSize)
	assert.Equal(t, int64(200), snap.AssessmentSize)
	assert.Equal(t, int64(300), snap.ExemplarSize)
	assert.Equal(t, int64(600), snap.TotalSize)
}
