package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	db      string
	quiet   bool
	verbose bool
}

type importFlags struct {
	common     commonFlags
	id         string
	name       string
	doctype    string
	validFrom  string
	validUntil string
	dryRun     bool
	purge      bool
	strict     bool
}

type exportFlags struct {
	common commonFlags
	format string
	output string
	date   string
}

type renderFlags struct {
	common commonFlags
	decode bool
}

type addFlags struct {
	common      commonFlags
	description string
}

// addCommonFlags registers the flags every store-backed command accepts.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.db, "db", "", "SQLite database path (overrides database.path)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging and full warning list")
}

func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

func importFlagSet(f *importFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("import", printImportUsage, stderr)
	fs.StringVar(&f.id, "id", "", "document identifier")
	fs.StringVar(&f.name, "name", "", "document name")
	fs.StringVar(&f.doctype, "doctype", "", "document type (must exist)")
	fs.StringVar(&f.validFrom, "valid-from", "", "document valid from (YYYY-MM-DD or DD.MM.YYYY)")
	fs.StringVar(&f.validUntil, "valid-until", "", "document valid until (YYYY-MM-DD or DD.MM.YYYY)")
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "show what would be imported without writing")
	fs.BoolVar(&f.purge, "purge", false, "replace the document's existing content")
	fs.BoolVar(&f.strict, "strict", false, "fail instead of dropping content outside a section")
	addCommonFlags(fs, &f.common)
	return fs
}

func exportFlagSet(f *exportFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("export", printExportUsage, stderr)
	fs.StringVarP(&f.format, "format", "f", formatHTML, "output format: html, checklist, pdf")
	fs.StringVarP(&f.output, "output", "o", "", "output file (- for stdout)")
	fs.StringVar(&f.date, "date", "", "check date for requirement status (default today)")
	addCommonFlags(fs, &f.common)
	return fs
}

func renderFlagSet(f *renderFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("render", printRenderUsage, stderr)
	fs.BoolVar(&f.decode, "decode", false, "decode a diagram token back to its source")
	addCommonFlags(fs, &f.common)
	return fs
}

func addFlagSet(f *addFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("add", printAddUsage, stderr)
	fs.StringVarP(&f.description, "description", "d", "", "optional description")
	addCommonFlags(fs, &f.common)
	return fs
}

func configFlagSet(f *commonFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("config", printConfigUsage, stderr)
	addCommonFlags(fs, f)
	return fs
}

// parseFlags parses args and returns the positional arguments. Parse
// failures other than -h are usage errors.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}
