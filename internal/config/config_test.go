package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Database.Path != DefaultDatabasePath {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, DefaultDatabasePath)
	}
	if cfg.Diagram.Server != "https://kroki.io" {
		t.Errorf("Diagram.Server = %q, want kroki", cfg.Diagram.Server)
	}
	if cfg.Export.DateFormat != "DD.MM.YYYY" {
		t.Errorf("Export.DateFormat = %q, want DD.MM.YYYY", cfg.Export.DateFormat)
	}
	if cfg.Render.Workers != 0 {
		t.Errorf("Render.Workers = %d, want 0 (auto)", cfg.Render.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "diagram server without scheme",
			mutate:  func(c *Config) { c.Diagram.Server = "kroki.io" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Render.Workers = -1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Render.Workers = MaxWorkers + 1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unclosed bracket in date format",
			mutate:  func(c *Config) { c.Export.DateFormat = "[DD.MM" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Export.Timeout = "soon" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Export.Timeout = "-5s" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: ErrInvalidValue,
		},
		{
			name:   "log level any case",
			mutate: func(c *Config) { c.Log.Level = "DEBUG" },
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "style name too long",
			mutate:  func(c *Config) { c.Export.Style = strings.Repeat("s", MaxStyleNameLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:   "style name at limit, counted in runes",
			mutate: func(c *Config) { c.Export.Style = strings.Repeat("ü", MaxStyleNameLength) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ExportTimeout(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Export.Timeout = ""
	d, err := cfg.ExportTimeout()
	if err != nil || d != 30*time.Second {
		t.Errorf("ExportTimeout() = %v, %v; want 30s", d, err)
	}

	cfg.Export.Timeout = "2m"
	if d, _ := cfg.ExportTimeout(); d != 2*time.Minute {
		t.Errorf("ExportTimeout() = %v, want 2m", d)
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("file path overrides defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "team.yaml", `database:
  path: /srv/vorgaben.db
diagram:
  server: http://kroki.intern:8000
render:
  highlightStyle: github
  workers: 3
export:
  style: print
log:
  level: debug
  format: json
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Database.Path != "/srv/vorgaben.db" {
			t.Errorf("Database.Path = %q", cfg.Database.Path)
		}
		if cfg.Diagram.Server != "http://kroki.intern:8000" {
			t.Errorf("Diagram.Server = %q", cfg.Diagram.Server)
		}
		if cfg.Render.Workers != 3 || cfg.Render.HighlightStyle != "github" {
			t.Errorf("Render = %+v", cfg.Render)
		}
		if cfg.Export.Style != "print" {
			t.Errorf("Export.Style = %q", cfg.Export.Style)
		}
		// Untouched keys keep their defaults.
		if cfg.Export.DateFormat != DefaultDateFormat {
			t.Errorf("Export.DateFormat = %q, want default", cfg.Export.DateFormat)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
			t.Errorf("Log = %+v", cfg.Log)
		}
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "empty.yaml", "\n")
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if *cfg != *DefaultConfig() {
			t.Errorf("LoadConfig() = %+v, want defaults", cfg)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadConfig("/nonexistent/path/config.yaml"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown name returns ErrConfigNotFound listing paths", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("no-such-config-name-xyz")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "no-such-config-name-xyz.yaml") {
			t.Errorf("error %q does not list searched paths", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "bad.yaml", "database: [unclosed")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "typo.yaml", "database:\n  pfad: x.db\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "workers.yaml", "render:\n  workers: 1000\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("vorgaben")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want local paths first", paths)
	}
	if paths[0] != "vorgaben.yaml" || paths[1] != "vorgaben.yml" {
		t.Errorf("SearchPaths()[:2] = %v", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, filepath.Join("vorgaben", "vorgaben")) {
			t.Errorf("user path %q not below the vorgaben config dir", p)
		}
	}
}
