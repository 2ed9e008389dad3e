package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all cookbook configuration.
type Config struct {
	// Database is the SQLite file holding the catalog
	Database DatabaseConfig `yaml:"database"`

	// Server configures `cookbook serve`
	Server ServerConfig `yaml:"server"`

	// Catalog behaviour
	Catalog CatalogConfig `yaml:"catalog"`

	// Tagger configures LLM tag suggestions
	Tagger TaggerConfig `yaml:"tagger"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DatabaseConfig locates the database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// CatalogConfig configures the catalog service.
type CatalogConfig struct {
	SeedSamples bool `yaml:"seed_samples"`
	WheelSize   int  `yaml:"wheel_size"`
}

// TaggerConfig configures the Anthropic-backed tag suggester.
type TaggerConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Dir returns the cookbook home directory, ~/.cookbook.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".cookbook")
}

// DefaultPath is where Load looks when no --config is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(Dir(), "cookbook.db"),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
		Catalog: CatalogConfig{
			SeedSamples: true,
			WheelSize:   8,
		},
		Tagger: TaggerConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects values the program cannot run with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("config: database.path is required")
	}
	if c.Catalog.WheelSize < 1 {
		return fmt.Errorf("config: catalog.wheel_size must be positive, got %d", c.Catalog.WheelSize)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging.level %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("COOKBOOK_DB"); path != "" {
		c.Database.Path = path
	}
	if addr := os.Getenv("COOKBOOK_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("COOKBOOK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if seed := os.Getenv("COOKBOOK_SEED_SAMPLES"); seed != "" {
		if b, err := strconv.ParseBool(seed); err == nil {
			c.Catalog.SeedSamples = b
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Tagger.APIKey = key
	}
}
