package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BackendConfig holds the connection settings for the mail REST API.
type BackendConfig struct {
	// BaseURL is the root of the /mail API (e.g., http://localhost:8000/mail).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is how many times a throttled or unavailable request
	// is retried before giving up.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// StorageConfig controls where local state is kept.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme    string `mapstructure:"theme" yaml:"theme"`
	PageSize int    `mapstructure:"page_size" yaml:"page_size"`
}

// LogConfig controls the debug log written while the TUI owns the terminal.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// PageSizes are the page sizes offered by paginated tables.
var PageSizes = []int{5, 10, 15}

const (
	defaultBaseURL    = "http://localhost:8000/mail"
	defaultTimeoutSec = 30
	defaultMaxRetries = 3
	defaultPageSize   = 5
)

// configDir returns ~/.config/mailfront, or the working directory when
// the home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailfront")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailfront/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:    defaultBaseURL,
			TimeoutSec: defaultTimeoutSec,
			MaxRetries: defaultMaxRetries,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(configDir(), "mailfront.db"),
		},
		Display: DisplayConfig{
			Theme:    "default",
			PageSize: defaultPageSize,
		},
		Log: LogConfig{
			File:  filepath.Join(configDir(), "debug.log"),
			Level: "info",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	defaults := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("backend.base_url", defaults.Backend.BaseURL)
	v.SetDefault("backend.timeout_sec", defaults.Backend.TimeoutSec)
	v.SetDefault("backend.max_retries", defaults.Backend.MaxRetries)
	v.SetDefault("storage.db_path", defaults.Storage.DBPath)
	v.SetDefault("display.theme", defaults.Display.Theme)
	v.SetDefault("display.page_size", defaults.Display.PageSize)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.level", defaults.Log.Level)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if !validPageSize(cfg.Display.PageSize) {
		cfg.Display.PageSize = defaultPageSize
	}
	if cfg.Backend.TimeoutSec <= 0 {
		cfg.Backend.TimeoutSec = defaultTimeoutSec
	}
	if cfg.Backend.MaxRetries < 0 {
		cfg.Backend.MaxRetries = 0
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("storage", cfg.Storage)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

func validPageSize(n int) bool {
	for _, size := range PageSizes {
		if size == n {
			return true
		}
	}
	return false
}
