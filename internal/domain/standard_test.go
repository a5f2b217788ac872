package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStandardID(t *testing.T) {
	tests := []struct {
		raw     string
		want    StandardID
		wantErr bool
	}{
		{"91934", "91934", false},
		{" 90940 ", "90940", false},
		{"", "", true},
		{"c", "", true},
		{"9193a", "", true},
		{"-1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStandardID(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStandard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComponentKind_Category(t *testing.T) {
	assert.Equal(t, CategoryAnswers, KindAnswers.Category())
	assert.Equal(t, CategoryAssessment, KindAssessment.Category())
	assert.Equal(t, CategoryExemplar, KindExcellence.Category())
	assert.Equal(t, CategoryExemplar, KindMerit.Category())
	assert.Equal(t, CategoryExemplar, KindAchievement.Category())

	assert.False(t, KindAnswers.IsExemplar())
	assert.False(t, KindAssessment.IsExemplar())
	assert.True(t, KindMerit.IsExemplar())
}

func TestValidateKind(t *testing.T) {
	assert.True(t, ValidateKind(KindAnswers))
	assert.True(t, ValidateKind(KindAchievement))
	assert.False(t, ValidateKind("Scholarship"))
}

func TestStandard_Layout(t *testing.T) {
	s := &Standard{ID: "91934", Title: "Mathematics and Statistics, Algebra"}

	component, subject, err := s.Layout()
	require.NoError(t, err)
	assert.Equal(t, "Algebra", component)
	assert.Equal(t, "Mathematics and Statistics 91934", subject)
}

func TestStandard_Layout_NoComma(t *testing.T) {
	s := &Standard{ID: "90940", Title: "Demonstrate understanding of aspects of mechanical systems"}

	component, subject, err := s.Layout()
	require.NoError(t, err)
	assert.Equal(t, "Demonstrate understanding of aspects of mechanical systems", component)
	assert.Equal(t, "Demonstrate understanding of aspects of mechanical systems 90940", subject)
}

func TestStandard_Layout_Malformed(t *testing.T) {
	for _, title := range []string{"", "   ", "Physics,Mechanics", "Physics, "} {
		s := &Standard{ID: "1", Title: title}
		_, _, err := s.Layout()
		assert.ErrorIs(t, err, ErrMalformedTitle, "title %q", title)
	}
}

func TestOutcome_Classification(t *testing.T) {
	assert.True(t, Downloaded("/a", 1, "").Succeeded())
	assert.True(t, Skipped("/a").Succeeded())
	assert.False(t, Failed(ReasonNotFound, "404").Succeeded())
	assert.False(t, Missed("none").Succeeded())

	assert.True(t, Failed(ReasonTransport, "reset").CountsAsFailure())
	assert.True(t, Missed("none").CountsAsFailure())
	assert.False(t, Skipped("/a").CountsAsFailure())
}

func TestRun_MarkCompleted(t *testing.T) {
	run := NewRun([]StandardID{"91934", "90940"})
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "91934,90940", run.Standards)
	assert.Equal(t, RunRunning, run.Status)
	assert.False(t, run.IsTerminal())

	run.MarkCompleted(&StatsSnapshot{Downloaded: 3, Skipped: 1, Failed: 1, Total: 5, Percentage: 60})
	assert.Equal(t, RunCompleted, run.Status)
	assert.Equal(t, int64(5), run.Total)
	assert.NotNil(t, run.FinishedAt)
	assert.True(t, run.IsTerminal())
}
