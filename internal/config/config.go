// Package config provides YAML-based configuration loading.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config is the top-level configuration, loaded from message.yaml.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Watcher WatcherConfig `yaml:"watcher"`
	Server  ServerConfig  `yaml:"server"`
}

// StoreConfig holds connection settings for the document store.
type StoreConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// OpenAIConfig holds generation-service settings. APIKey may be left
// empty in the file and supplied via the OPENAI_API_KEY environment
// variable instead. Emulator enables the deterministic offline mock
// used when no credential is configured.
type OpenAIConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	ClassifierModel string `yaml:"classifier_model"`
	ExtractorModel  string `yaml:"extractor_model"`
	TriggerModel    string `yaml:"trigger_model"`
	Emulator        bool   `yaml:"emulator"`
}

// WatcherConfig holds timing for the analysis loops.
type WatcherConfig struct {
	DebounceSeconds int    `yaml:"debounce_seconds"`
	PollSeconds     int    `yaml:"poll_seconds"`
	DigestSchedule  string `yaml:"digest_schedule"` // 5-field cron expression, empty disables
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	return cfg, nil
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config with all defaults applied, for use when no
// config file exists (local sqlite, emulator off).
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.Path == "" {
		c.Store.Path = "message.db"
	}
	if c.Store.Host == "" {
		c.Store.Host = "127.0.0.1"
	}
	if c.Store.Port == 0 {
		c.Store.Port = 3306
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.ClassifierModel == "" {
		c.OpenAI.ClassifierModel = "gpt-3.5-turbo"
	}
	if c.OpenAI.ExtractorModel == "" {
		c.OpenAI.ExtractorModel = "gpt-4"
	}
	if c.OpenAI.TriggerModel == "" {
		c.OpenAI.TriggerModel = "gpt-3.5-turbo"
	}
	if c.Watcher.DebounceSeconds == 0 {
		c.Watcher.DebounceSeconds = 3
	}
	if c.Watcher.PollSeconds == 0 {
		c.Watcher.PollSeconds = 2
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Store.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be %q or %q", DriverSQLite, DriverMySQL))
	}
	if c.Store.Driver == DriverMySQL && c.Store.Database == "" {
		errs = append(errs, "store.database is required for mysql")
	}
	if c.Watcher.DebounceSeconds < 0 {
		errs = append(errs, "watcher.debounce_seconds must not be negative")
	}
	if c.Watcher.PollSeconds < 0 {
		errs = append(errs, "watcher.poll_seconds must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
