package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-vorgaben/internal/config"
	"github.com/alnah/go-vorgaben/internal/hints"
	"github.com/alnah/go-vorgaben/internal/logging"
	"github.com/alnah/go-vorgaben/internal/render"
	"github.com/alnah/go-vorgaben/internal/sqlstore"
)

// loadConfig builds the effective configuration: the named config file
// (flag, then VORGABEN_CONFIG) or env.Config, then environment overrides,
// then flags.
func loadConfig(f *commonFlags, env *Environment) (*config.Config, error) {
	ec := loadEnvConfig()

	name := f.config
	if name == "" {
		name = ec.ConfigPath
	}

	var cfg *config.Config
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
	} else {
		base := config.DefaultConfig()
		if env.Config != nil {
			copied := *env.Config
			base = &copied
		}
		cfg = base
	}

	applyEnvConfig(ec, cfg)
	if f.db != "" {
		cfg.Database.Path = f.db
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the diagnostic logger. --verbose forces debug and
// --quiet raises the threshold to errors.
func newLogger(cfg *config.Config, f *commonFlags, w io.Writer) (*slog.Logger, error) {
	level := cfg.Log.Level
	switch {
	case f.verbose:
		level = "debug"
	case f.quiet:
		level = "error"
	}
	return logging.New(w, level, cfg.Log.Format)
}

// openStore opens the configured database, adding a hint on failure.
func openStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	store, err := sqlstore.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForDatabase(cfg.Database.Path))
	}
	return store, nil
}

// renderOptions translates the render and diagram settings.
func renderOptions(cfg *config.Config) []render.Option {
	opts := []render.Option{render.WithDiagramServer(cfg.Diagram.Server)}
	if cfg.Render.HighlightStyle != "" {
		opts = append(opts, render.WithHighlighting(cfg.Render.HighlightStyle))
	}
	return opts
}
