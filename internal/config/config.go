// ABOUTME: Configuration loading and parsing for jplx-chat.
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete jplx-chat configuration.
type Config struct {
	Webhook Webhook `yaml:"webhook"`
	Storage Storage `yaml:"storage"`
	Agent   Agent   `yaml:"agent"`
	Logging Logging `yaml:"logging"`
}

// Webhook holds the agent endpoint and request policy.
type Webhook struct {
	URL      string        `yaml:"url"`
	Attempts int           `yaml:"attempts"`
	Timeout  time.Duration `yaml:"-"`
	Backoff  time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
	BackoffRaw string `yaml:"backoff"`
}

// Storage holds the local snapshot location.
type Storage struct {
	Path string `yaml:"path"`
}

// Agent holds the default agent selection.
type Agent struct {
	Default string `yaml:"default"`
}

// Logging holds logging configuration.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults applied when the file omits a field.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
)

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = DefaultTimeout
	}
	if c.Webhook.Attempts == 0 {
		c.Webhook.Attempts = DefaultAttempts
	}
	if c.Webhook.Backoff == 0 {
		c.Webhook.Backoff = DefaultBackoff
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStoragePath()
	}
	if c.Agent.Default == "" {
		c.Agent.Default = "auto"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// defaultStoragePath puts the snapshot under the user's data directory,
// falling back to the working directory when home cannot be resolved.
func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "conversations.db"
	}
	return filepath.Join(home, ".local", "share", "jplx-chat", "conversations.db")
}

// Validate checks that all required configuration fields are present and
// valid. Returns an error describing the first validation failure.
func (c *Config) Validate() error {
	if c.Webhook.URL == "" {
		return fmt.Errorf("webhook.url is required")
	}
	if c.Webhook.Attempts < 1 {
		return fmt.Errorf("webhook.attempts must be at least 1")
	}
	if c.Webhook.Timeout <= 0 {
		return fmt.Errorf("webhook.timeout must be positive")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Webhook.TimeoutRaw != "" {
		cfg.Webhook.Timeout, err = time.ParseDuration(cfg.Webhook.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.Webhook.TimeoutRaw, err)
		}
	}

	if cfg.Webhook.BackoffRaw != "" {
		cfg.Webhook.Backoff, err = time.ParseDuration(cfg.Webhook.BackoffRaw)
		if err != nil {
			return fmt.Errorf("parsing backoff %q: %w", cfg.Webhook.BackoffRaw, err)
		}
	}

	return nil
}
