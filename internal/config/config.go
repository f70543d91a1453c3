// Package config loads ddlschema settings from a YAML file, a .env file and
// the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file
const (
	EnvFormat     = "DDLSCHEMA_FORMAT"
	EnvCatalogURL = "DDLSCHEMA_CATALOG_URL"
	EnvColor      = "DDLSCHEMA_COLOR"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all application configuration.
type Config struct {
	Format        string        `yaml:"format"`
	Color         string        `yaml:"color"` // "auto", "always" or "never"
	SkipInference bool          `yaml:"skip_inference"`
	Tables        []string      `yaml:"tables"`
	ExcludeTables []string      `yaml:"exclude_tables"`
	Catalog       CatalogConfig `yaml:"catalog"`
}

// CatalogConfig holds the catalog export target.
type CatalogConfig struct {
	URL string `yaml:"url"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Format: "json",
		Color:  ColorAuto,
	}
}

// ConfigDir returns the ddlschema configuration directory, typically
// ~/.config/ddlschema/.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "ddlschema"), nil
}

// Load reads a Config from the YAML file at path. If the file does not exist,
// it returns DefaultConfig without error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads configuration from ConfigDir()/config.yaml.
func LoadDefault() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(dir, "config.yaml"))
}

// ApplyEnv loads a .env file from the working directory if one exists, then
// lets DDLSCHEMA_* variables override the loaded values.
func (c *Config) ApplyEnv() error {
	// Load .env file if it exists (silently ignore if missing)
	_ = godotenv.Load()

	if v := os.Getenv(EnvFormat); v != "" {
		c.Format = v
	}
	if v := os.Getenv(EnvCatalogURL); v != "" {
		c.Catalog.URL = v
	}
	if v := os.Getenv(EnvColor); v != "" {
		c.Color = strings.ToLower(v)
	}
	return c.Validate()
}

// Validate reports settings that can never work
func (c *Config) Validate() error {
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", c.Color)
	}
	return nil
}
