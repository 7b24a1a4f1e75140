// Package config loads client settings from an optional YAML file, a
// local .env file, and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all client settings.
type Config struct {
	// APIBaseURL is the root of the reporting backend, e.g.
	// "https://reports.example.org". The /api prefix is appended by the
	// client.
	APIBaseURL string
	APITimeout time.Duration

	// StoreBackend is one of auto, file, keyring, memory.
	StoreBackend   string
	StorePath      string
	KeyringService string

	LogLevel  string
	LogFormat string

	// HTTPAddr is the listen address of the kiosk/diagnostics server
	// started by "shorewatch serve".
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// Load reads configuration, applying defaults where unset. Precedence,
// lowest to highest: defaults, YAML config file, .env file, environment.
func Load() (*Config, error) {
	// Hydrate the environment from a .env file if one is present.
	// Existing variables win, matching the backend's dotenv behavior.
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:      "http://localhost:8000",
		APITimeout:      10 * time.Second,
		StoreBackend:    "auto",
		StorePath:       defaultStorePath(),
		KeyringService:  "shorewatch",
		LogLevel:        "info",
		LogFormat:       "json",
		HTTPAddr:        "127.0.0.1:8099",
		ShutdownTimeout: 10 * time.Second,
	}

	if err := applyFile(cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.APIBaseURL == "" {
		return nil, errors.New("SHOREWATCH_API_URL is required")
	}
	if cfg.APITimeout <= 0 {
		return nil, errors.New("invalid SHOREWATCH_API_TIMEOUT")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	switch cfg.StoreBackend {
	case "auto", "file", "keyring", "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.StoreBackend == "file" && cfg.StorePath == "" {
		return nil, errors.New("STORE_PATH is required for the file backend")
	}

	return cfg, nil
}

// fileConfig mirrors Config for YAML decoding; durations are written as
// Go duration strings ("10s").
type fileConfig struct {
	APIBaseURL      string `yaml:"api_base_url"`
	APITimeout      string `yaml:"api_timeout"`
	StoreBackend    string `yaml:"store_backend"`
	StorePath       string `yaml:"store_path"`
	KeyringService  string `yaml:"keyring_service"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	HTTPAddr        string `yaml:"http_addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// applyFile merges the YAML config file into cfg. The file named by
// SHOREWATCH_CONFIG must exist; the default location is optional.
func applyFile(cfg *Config) error {
	path := os.Getenv("SHOREWATCH_CONFIG")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(configDir(), "config.yaml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return fmt.Errorf("config file %s not found", path)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	overlayString(&cfg.APIBaseURL, fc.APIBaseURL)
	overlayString(&cfg.StoreBackend, fc.StoreBackend)
	overlayString(&cfg.StorePath, fc.StorePath)
	overlayString(&cfg.KeyringService, fc.KeyringService)
	overlayString(&cfg.LogLevel, fc.LogLevel)
	overlayString(&cfg.LogFormat, fc.LogFormat)
	overlayString(&cfg.HTTPAddr, fc.HTTPAddr)

	if err := overlayDuration(&cfg.APITimeout, fc.APITimeout, "api_timeout"); err != nil {
		return err
	}
	return overlayDuration(&cfg.ShutdownTimeout, fc.ShutdownTimeout, "shutdown_timeout")
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v, name string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid %s %q in config file", name, v)
	}
	*dst = d
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.APIBaseURL, "SHOREWATCH_API_URL")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.StorePath, "STORE_PATH")
	setString(&cfg.KeyringService, "KEYRING_SERVICE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")

	if err := setDuration(&cfg.APITimeout, "SHOREWATCH_API_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&cfg.ShutdownTimeout, "SHUTDOWN_TIMEOUT")
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name string) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid %s %q", name, v)
	}
	*dst = d
	return nil
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "shorewatch")
	}
	return "."
}

func defaultStorePath() string {
	return filepath.Join(configDir(), "session.json")
}
