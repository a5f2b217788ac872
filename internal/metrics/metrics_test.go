package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

func TestRecorder_ObserveOutcome(t *testing.T) {
	r := NewRecorder()

	r.ObserveOutcome(domain.KindAnswers, domain.Downloaded("/a", 10, ""))
	r.ObserveOutcome(domain.KindAnswers, domain.Downloaded("/b", 10, ""))
	r.ObserveOutcome(domain.KindMerit, domain.Missed("none"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.outcomes.WithLabelValues("downloaded", "Answers")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("missed", "Merit")))
}

func TestRecorder_ObserveAttempt(t *testing.T) {
	r := NewRecorder()

	r.ObserveAttempt("NZQA", domain.Failed(domain.ReasonNotFound, "status code 404"), 10*time.Millisecond)
	r.ObserveAttempt("StudyTime", domain.Downloaded("/a", 1, ""), 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues("NZQA", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues("StudyTime", "downloaded")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveOutcome(domain.KindAnswers, domain.Skipped("/a"))
		r.ObserveAttempt("NZQA", domain.Skipped("/a"), time.Second)
	})
}
