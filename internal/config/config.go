package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const APP_NAME = "urzis"

type Config struct {
	// Server URL used when no server has been stored yet.
	ServerURL string `mapstructure:"server_url"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // json or text

	// HTTP timeout in seconds. Zero disables the timeout.
	HTTPTimeout uint   `mapstructure:"http_timeout"`
	UserAgent   string `mapstructure:"user_agent"`

	Storage Storage `mapstructure:"storage"`
}

// Timeout returns the configured HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// ConfigDir returns the folder holding config.yaml and relative storage paths.
func ConfigDir() string {
	if dir := os.Getenv("URZIS_HOME"); dir != "" {
		return dir
	}
	if runningInDocker() {
		return "/app/instance"
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "."+APP_NAME)
	}
	return "./instance"
}

// LoadConfig reads configuration from defaults, an optional config file and
// URZIS_ prefixed environment variables.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath("./instance")
	v.SetEnvPrefix(strings.ToUpper(APP_NAME))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, path := range configFile {
		if path != "" {
			v.SetConfigFile(path)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	v.AutomaticEnv()

	// A missing config.yaml is fine, env and defaults are enough
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	cfg.Storage.Type = strings.ToLower(cfg.Storage.Type)
	switch cfg.Storage.Type {
	case StorageSQLite, StorageFile, StorageMemory:
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}

	// Relative storage paths live in the config folder
	if cfg.Storage.SQLite != nil {
		cfg.Storage.SQLite.Path = resolvePath(cfg.Storage.SQLite.Path)
	}
	if cfg.Storage.File != nil {
		cfg.Storage.File.Path = resolvePath(cfg.Storage.File.Path)
	}

	if cfg.HTTPTimeout == 0 {
		slog.Warn("HTTP timeout disabled, requests may hang on an unresponsive server")
	}

	return &cfg, nil
}

func resolvePath(path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ConfigDir(), path)
}

