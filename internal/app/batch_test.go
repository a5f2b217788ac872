package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ncea-extract-go/internal/domain"
	"github.com/yourusername/ncea-extract-go/internal/infrastructure"
	"github.com/yourusername/ncea-extract-go/internal/metrics"
)

// fakeCatalog implements domain.Catalog from a fixed title map
type fakeCatalog struct {
	titles map[domain.StandardID]string
}

func (c *fakeCatalog) Lookup(ctx context.Context, id domain.StandardID) (*domain.Standard, error) {
	title, ok := c.titles[id]
	if !ok {
		return nil, domain.ErrStandardNotFound
	}
	return &domain.Standard{ID: id, Title: title, Credits: "5", Assessment: "External", Level: "1"}, nil
}

// mockRunRepo implements domain.RunRepository for testing
type mockRunRepo struct {
	mu      sync.Mutex
	runs    map[string]*domain.Run
	records []*domain.TaskRecord
}

func newMockRunRepo() *mockRunRepo {
	return &mockRunRepo{runs: make(map[string]*domain.Run)}
}

func (m *mockRunRepo) CreateRun(run *domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

func (m *mockRunRepo) UpdateRun(run *domain.Run) error {
	return m.CreateRun(run)
}

func (m *mockRunRepo) AddTaskRecord(record *domain.TaskRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *mockRunRepo) FindRun(id string) (*domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (m *mockRunRepo) ListRuns(limit int) ([]*domain.Run, error) { return nil, nil }

func (m *mockRunRepo) ListTaskRecords(runID string) ([]*domain.TaskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.TaskRecord
	for _, r := range m.records {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

const algebraTitle = "Mathematics and Statistics, Algebra"

// newPaperServer serves 2048 bytes under /mirror and 404s everything else
func newPaperServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/mirror/") {
			hits.Add(1)
			w.Write(make([]byte, 2048))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestScheduler(t *testing.T, srv *httptest.Server, baseDir string, opts ...SchedulerOption) *Scheduler {
	config := &domain.DownloadConfig{
		BaseDir:         baseDir,
		ConcurrentLimit: 4,
		RequestTimeout:  5 * time.Second,
	}
	providers := []domain.Provider{
		infrastructure.NewNZQAProvider(srv.URL + "/nzqa"),
		infrastructure.NewStudyTimeProvider(srv.URL + "/mirror"),
	}
	resolver := NewResolver(providers, infrastructure.NewHTTPFetcher(config, nil), nil, nil)
	catalog := &fakeCatalog{titles: map[domain.StandardID]string{"91934": algebraTitle}}
	return NewScheduler(catalog, resolver, config, nil, opts...)
}

func TestScheduler_FallbackDownloadEndToEnd(t *testing.T) {
	var hits atomic.Int64
	srv := newPaperServer(t, &hits)
	baseDir := t.TempDir()
	s := newTestScheduler(t, srv, baseDir)

	snap, err := s.Run(context.Background(), []domain.StandardID{"91934"}, []int{2021}, []domain.ComponentKind{domain.KindAnswers})
	require.NoError(t, err)

	assert.Equal(t, int64(1), snap.Downloaded)
	assert.Equal(t, int64(0), snap.Failed)
	assert.Equal(t, int64(1), snap.Total)
	assert.Equal(t, 100.0, snap.Percentage)
	assert.Equal(t, int64(2048), snap.AnswersSize)
	assert.Equal(t, int64(2048), snap.TotalSize)
	assert.Equal(t, int64(2048), snap.BytesTransferred)

	path := filepath.Join(baseDir, "Algebra", "Mathematics and Statistics 91934", "Answers", "91934-ass-2021.pdf")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), info.Size())

	_, err = os.Stat(path + infrastructure.PartSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestScheduler_RerunSkipsExistingFiles(t *testing.T) {
	var hits atomic.Int64
	srv := newPaperServer(t, &hits)
	baseDir := t.TempDir()
	s := newTestScheduler(t, srv, baseDir)
	ids := []domain.StandardID{"91934"}
	kinds := []domain.ComponentKind{domain.KindAnswers, domain.KindAssessment}

	first, err := s.Run(context.Background(), ids, []int{2020, 2021}, kinds)
	require.NoError(t, err)
	assert.Equal(t, int64(4), first.Downloaded)
	assert.Equal(t, int64(4), hits.Load())

	second, err := s.Run(context.Background(), ids, []int{2020, 2021}, kinds)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Downloaded)
	assert.Equal(t, int64(4), second.Skipped)
	assert.Equal(t, int64(4), hits.Load(), "no request is made for files already on disk")
	assert.Equal(t, first.TotalSize, second.TotalSize)
	assert.Equal(t, int64(0), second.BytesTransferred)
}

func TestScheduler_ExemplarsMissedWhenNoProviderHasThem(t *testing.T) {
	var hits atomic.Int64
	srv := newPaperServer(t, &hits)
	s := newTestScheduler(t, srv, t.TempDir())

	snap, err := s.Run(context.Background(), []domain.StandardID{"91934"}, []int{2021},
		[]domain.ComponentKind{domain.KindExcellence, domain.KindMerit, domain.KindAchievement})
	require.NoError(t, err)

	assert.Equal(t, int64(3), snap.Total)
	assert.Equal(t, int64(3), snap.Failed)
	assert.Equal(t, int64(3), snap.Missed)
	assert.Equal(t, int64(0), snap.ExemplarSize)
	assert.Equal(t, int64(0), hits.Load())
}

func TestScheduler_UnknownStandardIsSkipped(t *testing.T) {
	var hits atomic.Int64
	srv := newPaperServer(t, &hits)
	repo := newMockRunRepo()
	s := newTestScheduler(t, srv, t.TempDir(), WithHistory(repo), WithMetrics(metrics.NewRecorder()))

	snap, err := s.Run(context.Background(), []domain.StandardID{"99999", "91934", "91934"}, []int{2021},
		[]domain.ComponentKind{domain.KindAnswers})
	require.NoError(t, err)

	assert.Equal(t, int64(1), snap.Total, "only the known standard produces tasks")
	assert.Equal(t, int64(1), snap.Downloaded)
	assert.Len(t, repo.records, 1)
}

func TestScheduler_EmptyBatch(t *testing.T) {
	var hits atomic.Int64
	srv := newPaperServer(t, &hits)
	s := newTestScheduler(t, srv, t.TempDir())

	snap, err := s.Run(context.Background(), nil, []int{2021}, []domain.ComponentKind{domain.KindAnswers})
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Total)
	assert.Equal(t, 0.0, snap.Percentage)
}

func TestScheduler_RecordsHistory(t *testing.T) {
	var hits atomic.Int64
	srv := newPaperServer(t, &hits)
	repo := newMockRunRepo()
	s := newTestScheduler(t, srv, t.TempDir(), WithHistory(repo))

	run := domain.NewRun([]domain.StandardID{"91934"})
	_, err := s.Execute(context.Background(), run, []domain.StandardID{"91934"}, []int{2021},
		[]domain.ComponentKind{domain.KindAnswers, domain.KindMerit})
	require.NoError(t, err)

	stored, err := repo.FindRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, stored.Status)
	assert.Equal(t, int64(2), stored.Total)
	assert.Equal(t, int64(1), stored.Downloaded)
	assert.Equal(t, int64(1), stored.Missed)
	assert.NotNil(t, stored.FinishedAt)

	records, err := repo.ListTaskRecords(run.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		if r.Kind == domain.KindAnswers {
			assert.Equal(t, domain.OutcomeDownloaded, r.Outcome)
			assert.Equal(t, "StudyTime", r.Provider)
			assert.True(t, strings.HasPrefix(r.Digest, "sha256:"))
		} else {
			assert.Equal(t, domain.OutcomeMissed, r.Outcome)
		}
	}
}

func TestScheduler_AbortsWhenBaseDirUnusable(t *testing.T) {
	var hits atomic.Int64
	srv := newPaperServer(t, &hits)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	repo := newMockRunRepo()
	s := newTestScheduler(t, srv, filepath.Join(blocker, "exams"), WithHistory(repo))

	run := domain.NewRun([]domain.StandardID{"91934"})
	snap, err := s.Execute(context.Background(), run, []domain.StandardID{"91934"}, []int{2021},
		[]domain.ComponentKind{domain.KindAnswers})
	require.Error(t, err)
	assert.Nil(t, snap)

	stored, err := repo.FindRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunAborted, stored.Status)
	assert.NotEmpty(t, stored.ErrorMessage)
}

// gateFetcher blocks every fetch until release is closed
type gateFetcher struct {
	release chan struct{}
}

func (f *gateFetcher) Fetch(ctx context.Context, url, destPath string) domain.Outcome {
	<-f.release
	return domain.Failed(domain.ReasonNotFound, "status code 404")
}

func TestBatchManager_SingleBatchAtATime(t *testing.T) {
	config := &domain.DownloadConfig{
		BaseDir:         t.TempDir(),
		ConcurrentLimit: 2,
		Years:           []int{2021},
		Kinds:           []domain.ComponentKind{domain.KindAnswers},
	}
	fetcher := &gateFetcher{release: make(chan struct{})}
	resolver := NewResolver([]domain.Provider{fakeProvider{name: "primary"}}, fetcher, nil, nil)
	catalog := &fakeCatalog{titles: map[domain.StandardID]string{"91934": algebraTitle}}
	bm := NewBatchManager(NewScheduler(catalog, resolver, config, nil), config, nil)

	run, err := bm.Start(context.Background(), []domain.StandardID{"91934"}, nil, nil)
	require.NoError(t, err)
	assert.True(t, bm.IsRunning())
	assert.Equal(t, run.ID, bm.Current())

	_, err = bm.Start(context.Background(), []domain.StandardID{"91934"}, nil, nil)
	assert.ErrorIs(t, err, ErrBatchRunning)

	close(fetcher.release)
	bm.Wait()

	assert.False(t, bm.IsRunning())
	assert.Empty(t, bm.Current())
	require.NotNil(t, bm.LastSnapshot())
	assert.Equal(t, int64(1), bm.LastSnapshot().Missed)
}

func TestBatchManager_RejectsEmptyStandards(t *testing.T) {
	config := &domain.DownloadConfig{BaseDir: t.TempDir(), ConcurrentLimit: 1}
	bm := NewBatchManager(NewScheduler(&fakeCatalog{}, NewResolver(nil, nil, nil, nil), config, nil), config, nil)

	_, err := bm.Start(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStandard)
}
