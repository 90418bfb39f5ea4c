package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-vorgaben/internal/config"
)

// envConfig holds configuration from VORGABEN_* environment variables.
type envConfig struct {
	ConfigPath    string // VORGABEN_CONFIG: config file name or path
	DatabasePath  string // VORGABEN_DB: SQLite database path
	DiagramServer string // VORGABEN_DIAGRAM_SERVER: diagram service base URL
	Style         string // VORGABEN_STYLE: export stylesheet name
	Timeout       string // VORGABEN_TIMEOUT: PDF generation timeout
	Workers       int    // VORGABEN_WORKERS: section render workers
	LogLevel      string // VORGABEN_LOG_LEVEL
	LogFormat     string // VORGABEN_LOG_FORMAT
}

// knownEnvVars lists valid VORGABEN_* variables, to catch typos.
var knownEnvVars = map[string]bool{
	"VORGABEN_CONFIG":         true,
	"VORGABEN_DB":             true,
	"VORGABEN_DIAGRAM_SERVER": true,
	"VORGABEN_STYLE":          true,
	"VORGABEN_TIMEOUT":        true,
	"VORGABEN_WORKERS":        true,
	"VORGABEN_LOG_LEVEL":      true,
	"VORGABEN_LOG_FORMAT":     true,
}

// loadEnvConfig reads the recognized VORGABEN_* values. A malformed
// VORGABEN_WORKERS is ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("VORGABEN_CONFIG"),
		DatabasePath:  os.Getenv("VORGABEN_DB"),
		DiagramServer: os.Getenv("VORGABEN_DIAGRAM_SERVER"),
		Style:         os.Getenv("VORGABEN_STYLE"),
		Timeout:       os.Getenv("VORGABEN_TIMEOUT"),
		LogLevel:      os.Getenv("VORGABEN_LOG_LEVEL"),
		LogFormat:     os.Getenv("VORGABEN_LOG_FORMAT"),
	}
	if workers := os.Getenv("VORGABEN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized VORGABEN_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		name, _, _ := strings.Cut(env, "=")
		if strings.HasPrefix(name, "VORGABEN_") && !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides cfg with every variable that is set.
// Precedence: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.DatabasePath != "" {
		cfg.Database.Path = env.DatabasePath
	}
	if env.DiagramServer != "" {
		cfg.Diagram.Server = env.DiagramServer
	}
	if env.Style != "" {
		cfg.Export.Style = env.Style
	}
	if env.Timeout != "" {
		cfg.Export.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Render.Workers = env.Workers
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
