package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplatePlaceholder is the token in the augment template replaced with
// the retrieved text.
const TemplatePlaceholder = "{{text}}"

// DefaultTemplate wraps retrieved passages in reference block markers so
// the sanitizer can strip them from stored messages later.
const DefaultTemplate = "<txtai_box>Relevant information:\n{{text}}</txtai_box>"

// Config holds all configuration for the augmentation service.
type Config struct {
	Augment AugmentConfig `yaml:"augment"`
	Search  SearchConfig  `yaml:"search"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// AugmentConfig is the user-editable settings record. It is persisted by
// the settings store and editable at runtime through the settings API.
type AugmentConfig struct {
	Enabled        bool              `yaml:"enabled" json:"enabled"`
	APIURL         string            `yaml:"api_url" json:"api_url"`
	QueryMessages  int               `yaml:"query_messages" json:"query_messages"`
	ScoreThreshold float64           `yaml:"score_threshold" json:"score_threshold"`
	ChunkBoundary  string            `yaml:"chunk_boundary" json:"chunk_boundary"`
	Template       string            `yaml:"template" json:"template"`
	InjectionDepth int               `yaml:"injection_depth" json:"injection_depth"`
	QuietKinds     []string          `yaml:"quiet_kinds" json:"quiet_kinds"`
	Macros         map[string]string `yaml:"macros,omitempty" json:"macros,omitempty"`
}

// SearchConfig holds outbound search client configuration.
type SearchConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// ServerConfig holds the host API configuration.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Augment: AugmentConfig{
			Enabled:        false,
			APIURL:         "",
			QueryMessages:  3,
			ScoreThreshold: 0.2,
			ChunkBoundary:  "",
			Template:       DefaultTemplate,
			InjectionDepth: 2,
			QuietKinds:     []string{"quiet"},
		},
		Search: SearchConfig{
			TimeoutSeconds: 30,
		},
		Server: ServerConfig{
			Address: ":8601",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults for a
// missing file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Augment = cfg.Augment.Normalized()
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for txtaug.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "txtaug.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".txtaug", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SettingsDBPath returns the path to the persisted settings database.
func SettingsDBPath(dir string) string {
	return filepath.Join(dir, ".txtaug", "settings.db")
}

// EnsureDataDir ensures the .txtaug directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".txtaug"), 0755)
}

// Normalized clamps out-of-range fields and restores required defaults.
func (a AugmentConfig) Normalized() AugmentConfig {
	if a.QueryMessages < 0 {
		a.QueryMessages = 0
	}
	if a.ScoreThreshold < 0 {
		a.ScoreThreshold = 0
	}
	if a.ScoreThreshold > 1 {
		a.ScoreThreshold = 1
	}
	if a.InjectionDepth < 0 {
		a.InjectionDepth = 0
	}
	if !strings.Contains(a.Template, TemplatePlaceholder) {
		a.Template = DefaultTemplate
	}
	return a
}

// Validate reports configuration problems that normalization cannot fix.
func (a AugmentConfig) Validate() error {
	if a.Enabled && a.APIURL == "" {
		return fmt.Errorf("augment enabled but api_url is empty")
	}
	return nil
}
