package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	vorgaben "github.com/alnah/go-vorgaben"
	"github.com/alnah/go-vorgaben/internal/assets"
	"github.com/alnah/go-vorgaben/internal/config"
	"github.com/alnah/go-vorgaben/internal/dateutil"
	"github.com/alnah/go-vorgaben/internal/hints"
)

// Export formats.
const (
	formatHTML      = "html"
	formatChecklist = "checklist"
	formatPDF       = "pdf"
)

// File permission constants.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// runExport renders a stored document as an HTML page, a checklist page
// or a PDF.
func runExport(ctx context.Context, args []string, env *Environment) error {
	f := &exportFlags{}
	positional, err := parseFlags(exportFlagSet(f, env.Stderr), args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: export takes exactly one document id, got %d", ErrUsage, len(positional))
	}
	id := positional[0]

	switch f.format {
	case formatHTML, formatChecklist, formatPDF:
	default:
		return fmt.Errorf("%w: --format %q (must be html, checklist, or pdf)", ErrUsage, f.format)
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	checkDate := env.Now()
	if f.date != "" {
		if checkDate, err = dateutil.ParseDate(f.date, env.Now()); err != nil {
			return fmt.Errorf("--date: %w", err)
		}
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.LoadDocument(ctx, id)
	if err != nil {
		if errors.Is(err, vorgaben.ErrDocumentNotFound) {
			return fmt.Errorf("%w%s", err, hints.ForDocumentNotFound())
		}
		return err
	}

	exp, closeExporter, err := newExporter(cfg)
	if err != nil {
		return err
	}
	defer closeExporter()

	var out []byte
	switch f.format {
	case formatChecklist:
		page, err := exp.Checklist(doc)
		if err != nil {
			return err
		}
		out = []byte(page)
	case formatHTML, formatPDF:
		page, err := exp.HTML(ctx, doc, checkDate)
		if err != nil {
			return err
		}
		out = []byte(page)
		if f.format == formatPDF {
			if out, err = exp.PDF(ctx, page); err != nil {
				return pdfError(err)
			}
		}
	}

	output := f.output
	if output == "" && f.format == formatPDF {
		output = id + ".pdf"
	}
	if err := writeOutput(env, output, out); err != nil {
		return err
	}
	if output != "" && output != "-" && !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Wrote %s\n", output)
	}
	return nil
}

// newExporter builds the renderer pool and exporter from cfg. The returned
// func releases both.
func newExporter(cfg *config.Config) (*vorgaben.Exporter, func(), error) {
	layout, err := dateutil.Layout(cfg.Export.DateFormat)
	if err != nil {
		return nil, nil, err
	}
	timeout, err := cfg.ExportTimeout()
	if err != nil {
		return nil, nil, err
	}

	pool, err := vorgaben.NewRendererPool(vorgaben.ResolvePoolSize(cfg.Render.Workers), renderOptions(cfg)...)
	if err != nil {
		return nil, nil, err
	}
	exp, err := vorgaben.NewExporter(pool,
		vorgaben.WithStyle(cfg.Export.Style),
		vorgaben.WithAssetPath(cfg.Export.AssetPath),
		vorgaben.WithDateLayout(layout),
		vorgaben.WithTimeout(timeout),
	)
	if err != nil {
		pool.Close()
		if errors.Is(err, assets.ErrStyleNotFound) {
			return nil, nil, fmt.Errorf("%w%s", err, hints.ForStyleNotFound(assets.StyleNames()))
		}
		return nil, nil, err
	}
	return exp, func() {
		_ = exp.Close()
		pool.Close()
	}, nil
}

func pdfError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	case errors.Is(err, vorgaben.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	}
	return err
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(env *Environment, path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := env.Stdout.Write(data); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
