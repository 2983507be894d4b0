// Package config loads triage.yaml and environment overrides.
//
// Precedence, highest first: command-line flags (applied by the CLI),
// TRIAGE_* environment variables, the YAML file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/avivsinai/thread-triage/internal/classify"
)

// DefaultPath is loaded when --config is not given and the file exists.
const DefaultPath = "triage.yaml"

// ErrMissingCredential is returned when the API key variable is unset.
var ErrMissingCredential = errors.New("missing API credential")

// Config is the on-disk configuration.
type Config struct {
	Anonymize AnonymizeConfig `yaml:"anonymize"`
	Classify  ClassifyConfig  `yaml:"classify"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type AnonymizeConfig struct {
	KeepHTML   bool     `yaml:"keep_html"`
	SortByTime bool     `yaml:"sort_by_time"`
	Strict     bool     `yaml:"strict"`
	Sentinel   string   `yaml:"sentinel"`
	MaskPaths  []string `yaml:"mask_paths,omitempty"`
}

type ClassifyConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	APIKeyEnv    string `yaml:"api_key_env,omitempty"`
	Timeout      string `yaml:"timeout"`
	Interval     string `yaml:"interval"`
	SystemPrompt string `yaml:"system_prompt,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // auto, console, json
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Anonymize: AnonymizeConfig{
			Sentinel: "XXXX",
		},
		Classify: ClassifyConfig{
			Provider: classify.ProviderOpenAI,
			Timeout:  "60s",
			Interval: "0s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// LoadConfig reads path over the defaults. It does not validate: call
// Validate once the environment overlay has been applied, so a TRIAGE_*
// variable can still correct a bad value from the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads path (a missing file leaves the defaults when optional is
// set), overlays the environment read through getenv, then validates.
func Load(path string, optional bool, getenv func(string) string) (Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		if !optional || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		cfg = DefaultConfig()
	}
	cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// WriteConfig writes cfg as YAML. It refuses to overwrite unless force is set.
func WriteConfig(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDotEnv loads KEY=value pairs from the given files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays TRIAGE_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Anonymize.Sentinel, "TRIAGE_SENTINEL")
	set(&c.Classify.Provider, "TRIAGE_PROVIDER")
	set(&c.Classify.Model, "TRIAGE_MODEL")
	set(&c.Classify.BaseURL, "TRIAGE_BASE_URL")
	set(&c.Classify.APIKeyEnv, "TRIAGE_API_KEY_ENV")
	set(&c.Classify.Timeout, "TRIAGE_TIMEOUT")
	set(&c.Classify.Interval, "TRIAGE_INTERVAL")
	set(&c.Logging.Level, "TRIAGE_LOG_LEVEL")
	set(&c.Logging.Format, "TRIAGE_LOG_FORMAT")
}

// Validate checks enumerations and durations.
func (c Config) Validate() error {
	switch c.Classify.Provider {
	case classify.ProviderOpenAI, classify.ProviderGemini:
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Classify.Provider, classify.ProviderOpenAI, classify.ProviderGemini)
	}
	switch c.Logging.Format {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (want auto, console or json)", c.Logging.Format)
	}
	if _, err := c.Classify.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Classify.IntervalDuration(); err != nil {
		return err
	}
	return nil
}

func (c ClassifyConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("timeout", c.Timeout, 60*time.Second)
}

func (c ClassifyConfig) IntervalDuration() (time.Duration, error) {
	return parseDuration("interval", c.Interval, 0)
}

// KeyEnv is the environment variable holding the API key.
func (c ClassifyConfig) KeyEnv() string {
	if c.APIKeyEnv != "" {
		return c.APIKeyEnv
	}
	if c.Provider == classify.ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// APIKey reads the credential through getenv.
func (c ClassifyConfig) APIKey(getenv func(string) string) (string, error) {
	name := c.KeyEnv()
	key := strings.TrimSpace(getenv(name))
	if key == "" {
		return "", fmt.Errorf("%w: %s env var is required", ErrMissingCredential, name)
	}
	return key, nil
}

func parseDuration(name, raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be >= 0", name, raw)
	}
	return d, nil
}
