package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	vorgaben "github.com/alnah/go-vorgaben"
	"github.com/alnah/go-vorgaben/internal/dateutil"
	"github.com/alnah/go-vorgaben/internal/hints"
)

// runImport parses one import file and stores it, or with --dry-run
// reports what would be stored.
func runImport(ctx context.Context, args []string, env *Environment) error {
	f := &importFlags{}
	positional, err := parseFlags(importFlagSet(f, env.Stderr), args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: import takes exactly one file, got %d", ErrUsage, len(positional))
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, &f.common, env.Stderr)
	if err != nil {
		return err
	}

	meta, err := importMetadata(f, env)
	if err != nil {
		return err
	}
	text, err := vorgaben.ReadSource(positional[0])
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	im := vorgaben.NewImporter(store, vorgaben.WithLogger(logger), vorgaben.WithClock(env.Now))

	if f.dryRun {
		plan, err := im.Preview(ctx, text, meta)
		if err != nil {
			return importError(err, meta)
		}
		if !f.common.quiet {
			printPlan(env.Stdout, plan, f.purge, f.common.verbose)
		}
		return nil
	}

	result, err := im.Execute(ctx, text, meta, vorgaben.ImportOptions{Purge: f.purge, Strict: f.strict})
	if err != nil {
		return importError(err, meta)
	}
	if !f.common.quiet {
		printResult(env.Stdout, result, f.common.verbose)
	}
	return nil
}

func importMetadata(f *importFlags, env *Environment) (vorgaben.Metadata, error) {
	now := env.Now()
	validFrom, err := dateutil.ParseOptionalDate(f.validFrom, now)
	if err != nil {
		return vorgaben.Metadata{}, fmt.Errorf("--valid-from: %w", err)
	}
	validUntil, err := dateutil.ParseOptionalDate(f.validUntil, now)
	if err != nil {
		return vorgaben.Metadata{}, fmt.Errorf("--valid-until: %w", err)
	}
	return vorgaben.Metadata{
		DocumentID:   f.id,
		Name:         f.name,
		DocumentType: f.doctype,
		ValidFrom:    validFrom,
		ValidUntil:   validUntil,
	}, nil
}

// importError appends the hint matching a failed import.
func importError(err error, meta vorgaben.Metadata) error {
	switch {
	case errors.Is(err, vorgaben.ErrUnknownDocumentType):
		return fmt.Errorf("%w%s", err, hints.ForUnknownDocumentType(meta.DocumentType))
	case errors.Is(err, vorgaben.ErrDroppedContent):
		return fmt.Errorf("%w%s", err, hints.ForDroppedContent())
	}
	return err
}

func printPlan(w io.Writer, plan *vorgaben.ImportPlan, purge, verbose bool) {
	doc := plan.Document
	fmt.Fprintln(w, "Dry run, nothing was written.")
	fmt.Fprintf(w, "Document %s %q (%s), %s\n", doc.ID, doc.Name, doc.DocumentType, existence(plan.DocumentExists))
	fmt.Fprintf(w, "  Would create: %s\n", formatCounts(contentCounts(doc.Content)))
	if plan.DocumentExists && purge {
		fmt.Fprintf(w, "  Would purge:  %s\n", formatCounts(plan.WouldPurge))
	}
	printDiagnostics(w, plan, verbose)
}

func printResult(w io.Writer, res *vorgaben.ImportResult, verbose bool) {
	doc := res.Document
	if res.Skipped {
		fmt.Fprintf(w, "Document %s unchanged since the last purge import, nothing to do.\n", doc.ID)
		return
	}
	state := "existing"
	if res.DocumentCreated {
		state = "created"
	}
	fmt.Fprintf(w, "Imported %s %q (%s), %s\n", doc.ID, doc.Name, doc.DocumentType, state)
	if res.Purged.Total() > 0 {
		fmt.Fprintf(w, "  Purged:  %s\n", formatCounts(res.Purged))
	}
	fmt.Fprintf(w, "  Created: %s\n", formatCounts(res.Created))
	fmt.Fprintf(w, "  New keywords: %d\n", res.KeywordsCreated)
	printDiagnostics(w, &res.ImportPlan, verbose)
	if verbose {
		fmt.Fprintf(w, "  Run: %s\n", res.RunID)
	}
}

// printDiagnostics reports parse statistics, warnings and dropped
// requirements. Warnings are listed one by one only when verbose.
func printDiagnostics(w io.Writer, plan *vorgaben.ImportPlan, verbose bool) {
	fmt.Fprintf(w, "  Blocks: %d, warnings: %d, dropped requirements: %d\n",
		plan.Blocks, len(plan.Warnings), len(plan.Dropped))
	if verbose {
		for _, warn := range plan.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
	} else if len(plan.Warnings) > 0 {
		fmt.Fprintln(w, "  Use --verbose to list the warnings.")
	}
	if hint := hints.ForUnresolvedTopics(droppedTopics(plan.Dropped)); hint != "" {
		fmt.Fprintln(w, hint[1:])
	}
}

func existence(exists bool) string {
	if exists {
		return "existing"
	}
	return "new"
}

// contentCounts counts the records content would create, per collection.
func contentCounts(c vorgaben.Content) vorgaben.PurgeCounts {
	counts := vorgaben.PurgeCounts{
		Introduction: len(c.Introduction),
		Scope:        len(c.Scope),
		Requirements: len(c.Requirements),
	}
	for _, r := range c.Requirements {
		counts.ShortText += len(r.ShortText)
		counts.LongText += len(r.LongText)
		counts.Checklist += len(r.Checklist)
	}
	return counts
}

func formatCounts(p vorgaben.PurgeCounts) string {
	return fmt.Sprintf("%d records (introduction %d, scope %d, requirements %d, short text %d, long text %d, checklist %d)",
		p.Total(), p.Introduction, p.Scope, p.Requirements, p.ShortText, p.LongText, p.Checklist)
}

// droppedTopics lists the distinct topics of dropped requirements in
// order of appearance. Requirements without a topic are skipped.
func droppedTopics(dropped []vorgaben.Requirement) []string {
	seen := make(map[string]bool, len(dropped))
	var topics []string
	for _, r := range dropped {
		if r.Topic == "" || seen[r.Topic] {
			continue
		}
		seen[r.Topic] = true
		topics = append(topics, r.Topic)
	}
	return topics
}
