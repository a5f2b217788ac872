package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
	Providers    []ProviderConfig   `mapstructure:"providers"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	BaseDir         string          `mapstructure:"base_dir"`
	LogsDir         string          `mapstructure:"logs_dir"`
	ConcurrentLimit int             `mapstructure:"concurrent_limit"`
	RequestTimeout  time.Duration   `mapstructure:"request_timeout"`
	Years           []int           `mapstructure:"years"`
	Kinds           []ComponentKind `mapstructure:"kinds"`
	UserAgent       string          `mapstructure:"user_agent"`
}

// CatalogConfig contains settings for the standard metadata lookup
type CatalogConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProviderConfig selects a provider and optionally overrides its base URL.
// The list order is the fallback order.
type ProviderConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
}

// HistoryConfig contains run history settings
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Download: DownloadConfig{
			BaseDir:         "Saved Exams",
			LogsDir:         "$HOME/.ncea-extract/logs",
			ConcurrentLimit: 8,
			RequestTimeout:  60 * time.Second,
			Years:           DefaultYears(),
			Kinds:           DefaultKinds(),
			UserAgent:       "ncea-extract/1.0",
		},
		Catalog: CatalogConfig{
			BaseURL: "https://www.nzqa.govt.nz",
			Timeout: 30 * time.Second,
		},
		Providers: []ProviderConfig{
			{Name: "nzqa"},
			{Name: "studytime"},
			{Name: "nobraintoosmall"},
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "$HOME/.ncea-extract/history.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
