// Package config provides configuration loading for chiroplot-mcp.
// It reads an optional YAML file, then applies .env and environment
// overrides on top of the defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/chiroplot-mcp/internal/annotation"
	"github.com/ironsheep/chiroplot-mcp/internal/imaging"
	"github.com/ironsheep/chiroplot-mcp/internal/render"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "chiroplot.yaml"

// Environment overrides.
const (
	EnvLogLevel  = "CHIROPLOT_LOG_LEVEL"
	EnvVariant   = "CHIROPLOT_VARIANT"
	EnvRegistry  = "CHIROPLOT_REGISTRY"
	EnvExportDir = "CHIROPLOT_EXPORT_DIR"
)

var ErrInvalid = errors.New("invalid configuration")

// Config represents the server configuration.
type Config struct {
	Session struct {
		// Variant is single, comparison or basic.
		Variant string `yaml:"variant"`

		// Region is the landmark region selected at startup. Empty means
		// the registry's first region.
		Region string `yaml:"region"`

		// RegistryFile extends or overrides the built-in landmark table.
		RegistryFile string `yaml:"registryFile"`
	} `yaml:"session"`

	// Canvas size before a radiograph is loaded.
	Canvas struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"canvas"`

	Export struct {
		JPEGQuality int `yaml:"jpegQuality"`

		// Dir receives exported files. Empty returns exports inline as
		// base64.
		Dir string `yaml:"dir"`
	} `yaml:"export"`

	Log struct {
		// Level is debug, info, warn or error.
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Session.Variant = annotation.SingleLine.Name
	cfg.Canvas.Width = render.DefaultWidth
	cfg.Canvas.Height = render.DefaultHeight
	cfg.Export.JPEGQuality = imaging.DefaultJPEGQuality
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// LoadDotEnv loads environment variables from the given .env files. Missing
// files are ignored; variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvVariant); ok && v != "" {
		c.Session.Variant = v
	}
	if v, ok := lookup(EnvRegistry); ok && v != "" {
		c.Session.RegistryFile = v
	}
	if v, ok := lookup(EnvExportDir); ok && v != "" {
		c.Export.Dir = v
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := annotation.ParseVariant(c.Session.Variant); err != nil {
		errs = append(errs, err)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg quality %d outside 1-100", c.Export.JPEGQuality))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Variant resolves Session.Variant.
func (c *Config) Variant() (annotation.Variant, error) {
	return annotation.ParseVariant(c.Session.Variant)
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
}
