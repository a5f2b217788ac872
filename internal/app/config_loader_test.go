package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
download:
  base_dir: /tmp/exams
  concurrent_limit: 2
  request_timeout: 15s
  years: [2022, 2023]
  kinds: [Answers]
providers:
  - name: studytime
  - name: nzqa
    base_url: http://localhost:9000
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/exams", config.Download.BaseDir)
	assert.Equal(t, 2, config.Download.ConcurrentLimit)
	assert.Equal(t, 15*time.Second, config.Download.RequestTimeout)
	assert.Equal(t, []int{2022, 2023}, config.Download.Years, "lists replace the defaults")
	assert.Equal(t, []domain.ComponentKind{domain.KindAnswers}, config.Download.Kinds)
	require.Len(t, config.Providers, 2)
	assert.Equal(t, "studytime", config.Providers[0].Name)
	assert.Equal(t, "http://localhost:9000", config.Providers[1].BaseURL)

	// untouched sections keep their defaults
	assert.Equal(t, 8090, config.Server.Port)
	assert.True(t, config.History.Enabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NCEAEXTRACT_DOWNLOAD_CONCURRENT_LIMIT", "3")
	t.Setenv("NCEAEXTRACT_LOGGING_LEVEL", "debug")
	path := writeConfig(t, "download:\n  base_dir: /tmp/exams\n")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, config.Download.ConcurrentLimit)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfig_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, "download:\n  base_dir: ~/exams\n")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "exams"), config.Download.BaseDir)
	assert.Equal(t, filepath.Join(home, ".ncea-extract", "history.db"), config.History.DatabasePath)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name    string
		content string
	}{
		{"unknown kind", "download:\n  kinds: [Solutions]\n"},
		{"unknown provider", "providers:\n  - name: examcentre\n"},
		{"zero workers", "download:\n  concurrent_limit: 0\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"malformed yaml", "download: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	config := domain.DefaultConfig()
	config.Download.BaseDir = "/srv/exams"
	config.Download.Years = []int{2019}
	config.Download.RequestTimeout = 45 * time.Second
	config.Providers = []domain.ProviderConfig{{Name: "nobraintoosmall"}}

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/exams", loaded.Download.BaseDir)
	assert.Equal(t, []int{2019}, loaded.Download.Years)
	assert.Equal(t, 45*time.Second, loaded.Download.RequestTimeout)
	assert.Equal(t, config.Download.Kinds, loaded.Download.Kinds)
	assert.Equal(t, config.Providers, loaded.Providers)
	assert.Equal(t, config.Catalog.BaseURL, loaded.Catalog.BaseURL)
}
