package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yourusername/ncea-extract-go/internal/domain"
	"github.com/yourusername/ncea-extract-go/internal/infrastructure"
)

// EnvPrefix is the prefix of environment variable overrides,
// e.g. NCEAEXTRACT_DOWNLOAD_CONCURRENT_LIMIT=4
const EnvPrefix = "NCEAEXTRACT"

// LoadConfig loads configuration from file and environment. An optional
// .env file in the working directory is loaded into the environment first.
func LoadConfig(configPath string) (*domain.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Start with default config
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.ncea-extract")
		v.AddConfigPath("/etc/ncea-extract")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Lists from the file replace the defaults instead of being merged element-wise
	if v.IsSet("download.years") {
		config.Download.Years = nil
	}
	if v.IsSet("download.kinds") {
		config.Download.Kinds = nil
	}
	if v.IsSet("providers") {
		config.Providers = nil
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindEnv registers the scalar keys so AutomaticEnv also applies to keys
// absent from the config file
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"server.host", "server.port",
		"download.base_dir", "download.logs_dir", "download.concurrent_limit",
		"download.request_timeout", "download.user_agent",
		"catalog.base_url", "catalog.timeout",
		"history.enabled", "history.database_path",
		"notification.enabled", "notification.method",
		"logging.level", "logging.format", "logging.output_path",
	} {
		v.BindEnv(key)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.BaseDir = expandPath(config.Download.BaseDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// ValidateConfig validates the configuration
func ValidateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.BaseDir == "" {
		return fmt.Errorf("download base directory not configured")
	}

	if config.Download.ConcurrentLimit < 1 {
		return fmt.Errorf("concurrent limit must be at least 1")
	}

	if config.Download.RequestTimeout < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}

	if len(config.Download.Years) == 0 {
		return fmt.Errorf("no years configured")
	}

	if len(config.Download.Kinds) == 0 {
		return fmt.Errorf("no component kinds configured")
	}
	for _, kind := range config.Download.Kinds {
		if !domain.ValidateKind(kind) {
			return fmt.Errorf("unknown component kind: %s", kind)
		}
	}

	if len(config.Providers) == 0 {
		return fmt.Errorf("no providers configured")
	}
	for _, p := range config.Providers {
		if !infrastructure.ValidateProviderName(p.Name) {
			return fmt.Errorf("unknown provider: %s", p.Name)
		}
	}

	if config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base url not configured")
	}

	if config.History.Enabled && config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("server", map[string]interface{}{
		"host": config.Server.Host,
		"port": config.Server.Port,
	})
	v.Set("download", map[string]interface{}{
		"base_dir":         config.Download.BaseDir,
		"logs_dir":         config.Download.LogsDir,
		"concurrent_limit": config.Download.ConcurrentLimit,
		"request_timeout":  config.Download.RequestTimeout.String(),
		"years":            config.Download.Years,
		"kinds":            config.Download.Kinds,
		"user_agent":       config.Download.UserAgent,
	})
	v.Set("catalog", map[string]interface{}{
		"base_url": config.Catalog.BaseURL,
		"timeout":  config.Catalog.Timeout.String(),
	})
	providers := make([]map[string]interface{}, len(config.Providers))
	for i, p := range config.Providers {
		providers[i] = map[string]interface{}{"name": p.Name, "base_url": p.BaseURL}
	}
	v.Set("providers", providers)
	v.Set("history", map[string]interface{}{
		"enabled":       config.History.Enabled,
		"database_path": config.History.DatabasePath,
	})
	v.Set("notification", map[string]interface{}{
		"enabled": config.Notification.Enabled,
		"method":  config.Notification.Method,
	})
	v.Set("logging", map[string]interface{}{
		"level":       config.Logging.Level,
		"format":      config.Logging.Format,
		"output_path": config.Logging.OutputPath,
	})

	if err := infrastructure.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
