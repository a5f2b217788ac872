package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

func testConfig(t *testing.T) *domain.Config {
	dir := t.TempDir()
	config := domain.DefaultConfig()
	config.Download.BaseDir = filepath.Join(dir, "exams")
	config.Download.LogsDir = filepath.Join(dir, "logs")
	config.History.DatabasePath = filepath.Join(dir, "history.db")
	return config
}

func TestNewRuntime(t *testing.T) {
	rt, err := NewRuntime(testConfig(t))
	require.NoError(t, err)

	assert.NotNil(t, rt.Scheduler)
	assert.NotNil(t, rt.Metrics)
	assert.NotNil(t, rt.Events)
	require.NotNil(t, rt.History)
	assert.NotNil(t, rt.HistoryRepository())
	assert.NoError(t, rt.Close())
}

func TestNewRuntime_HistoryDisabled(t *testing.T) {
	config := testConfig(t)
	config.History.Enabled = false

	rt, err := NewRuntime(config)
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.History)
	assert.Nil(t, rt.HistoryRepository(), "must be a nil interface, not a typed nil")
}

func TestNewRuntime_UnknownProvider(t *testing.T) {
	config := testConfig(t)
	config.Providers = []domain.ProviderConfig{{Name: "examcentre"}}

	_, err := NewRuntime(config)
	assert.Error(t, err)
}
