package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-vorgaben/internal/dateutil"
	"github.com/alnah/go-vorgaben/internal/fileutil"
	"github.com/alnah/go-vorgaben/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxPathLength       = 4096
	MaxURLLength        = 2048 // Browser limit
	MaxStyleNameLength  = 64
	MaxDateFormatLength = dateutil.MaxDateFormatLength
	MaxWorkers          = 64
)

// Defaults.
const (
	DefaultDatabasePath  = "vorgaben.db"
	DefaultDiagramServer = "https://kroki.io"
	DefaultStyle         = "default"
	DefaultDateFormat    = "DD.MM.YYYY"
	DefaultTimeout       = "30s"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// appDir is the directory below the user config dir searched for configs.
const appDir = "vorgaben"

// Config holds all configuration of the import and export tools.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Diagram  DiagramConfig  `yaml:"diagram"`
	Render   RenderConfig   `yaml:"render"`
	Export   ExportConfig   `yaml:"export"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DiagramConfig defines the diagram rendering service.
type DiagramConfig struct {
	Server string `yaml:"server"` // Base URL, e.g. https://kroki.io
}

// RenderConfig defines section rendering options.
type RenderConfig struct {
	HighlightStyle string `yaml:"highlightStyle"` // chroma style, empty = no highlighting
	Workers        int    `yaml:"workers"`        // 0 = auto
}

// ExportConfig defines HTML/PDF export options.
type ExportConfig struct {
	Style      string `yaml:"style"`      // Stylesheet name
	AssetPath  string `yaml:"assetPath"`  // Custom styles/templates, empty = embedded only
	DateFormat string `yaml:"dateFormat"` // Tokens: YYYY, MM, DD, ...
	Timeout    string `yaml:"timeout"`    // PDF generation, Go duration
}

// LogConfig defines structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Diagram:  DiagramConfig{Server: DefaultDiagramServer},
		Export: ExportConfig{
			Style:      DefaultStyle,
			DateFormat: DefaultDateFormat,
			Timeout:    DefaultTimeout,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Validate checks lengths and enumerations.
// Called by LoadConfig, but available for Configs built in code.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"database.path", c.Database.Path, MaxPathLength},
		{"diagram.server", c.Diagram.Server, MaxURLLength},
		{"render.highlightStyle", c.Render.HighlightStyle, MaxStyleNameLength},
		{"export.style", c.Export.Style, MaxStyleNameLength},
		{"export.assetPath", c.Export.AssetPath, MaxPathLength},
		{"export.dateFormat", c.Export.DateFormat, MaxDateFormatLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if c.Diagram.Server != "" && !fileutil.IsURL(c.Diagram.Server) {
		return fmt.Errorf("%w: diagram.server %q must start with http:// or https://", ErrInvalidValue, c.Diagram.Server)
	}
	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Render.Workers)
	}
	if c.Export.DateFormat != "" {
		if _, err := dateutil.ParseDateFormat(c.Export.DateFormat); err != nil {
			return fmt.Errorf("%w: export.dateFormat: %v", ErrInvalidValue, err)
		}
	}
	if _, err := c.ExportTimeout(); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}
	return nil
}

// ExportTimeout parses export.timeout. Empty means DefaultTimeout.
func (c *Config) ExportTimeout() (time.Duration, error) {
	s := c.Export.Timeout
	if s == "" {
		s = DefaultTimeout
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: export.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: export.timeout must be positive, got %s", ErrInvalidValue, s)
	}
	return d, nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrFieldTooLong, fieldName, maxLength)
	}
	return nil
}

// LoadConfig loads a config by name or path. A name is searched as
// ./<name>.yaml, ./<name>.yml, then <user config dir>/vorgaben/<name>.yaml
// and .yml. Keys missing from the file keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists where LoadConfig looks for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, appDir, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
