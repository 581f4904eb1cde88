// Package config loads the gwingest settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	databaseDSNEnv = "GWINGEST_DATABASE_DSN"
	natsURLEnv     = "GWINGEST_NATS_URL"
	downloadDirEnv = "GWINGEST_DOWNLOAD_DIR"

	defaultExportInterval = 15 * time.Minute
)

// Config holds the settings for one pipeline invocation. It is built
// once per invocation and passed explicitly; there is no process-wide
// mutable settings state.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	LVK      LVKConfig      `yaml:"lvk"`
	Events   EventsConfig   `yaml:"events"`
	Export   ExportConfig   `yaml:"export"`
}

// DatabaseConfig describes the Postgres connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LVKConfig mirrors the lvk section of the settings file: which event
// classes to process and where the alert download tree lives.
type LVKConfig struct {
	ParseMockEvents bool   `yaml:"parse_mock_events"`
	ParseRealEvents bool   `yaml:"parse_real_events"`
	DownloadDir     string `yaml:"download_dir"`
}

// EventsConfig configures optional ingest notifications. An empty URL
// disables publishing.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
}

// ExportConfig configures the periodic re-export run by `gwingest watch`.
type ExportConfig struct {
	Interval Duration `yaml:"interval"`
}

// Duration decodes YAML duration strings like "15m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.yaml"
	}
	return filepath.Join(home, ".config", "gwingest", "settings.yaml")
}

// Load reads the YAML settings file and applies environment overrides.
func Load(path string) (*Config, error) {
	c := &Config{
		Export: ExportConfig{Interval: Duration(defaultExportInterval)},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	c.applyEnvOverrides()

	if c.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required (settings file or %s)", databaseDSNEnv)
	}
	if c.Export.Interval <= 0 {
		c.Export.Interval = Duration(defaultExportInterval)
	}

	return c, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(natsURLEnv); v != "" {
		c.Events.NATSURL = v
	}
	if v := os.Getenv(downloadDirEnv); v != "" {
		c.LVK.DownloadDir = v
	}
}
