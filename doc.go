// Package vorgaben imports structured compliance standards ("Vorgaben")
// into a store and exports them as HTML and PDF.
//
// # Quick Start
//
// Import a file into a SQLite store, previewing first:
//
//	store, err := sqlstore.Open(ctx, "vorgaben.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	text, err := vorgaben.ReadSource("standard.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	meta := vorgaben.Metadata{
//	    DocumentID:   "STD-1",
//	    Name:         "Kryptografie",
//	    DocumentType: "Standard",
//	}
//
//	im := vorgaben.NewImporter(store, vorgaben.WithLogger(logger))
//	plan, err := im.Preview(ctx, text, meta)
//	// inspect plan.Warnings and plan.Dropped
//	result, err := im.Execute(ctx, text, meta, vorgaben.ImportOptions{Purge: true})
//
// # Import Pipeline
//
//  1. Metadata validation and document type lookup (fatal on failure)
//  2. Parsing of the ">>>" block format (never fails, emits warnings)
//  3. Resolution of topics and content types against the store
//  4. One transaction: document, optional purge, sections, requirements,
//     checklist questions, keywords and the import record
//
// A purge import of a source whose digest matches the latest purge run is
// skipped, so repeating it leaves the store unchanged.
//
// # Export
//
// Sections render through a RendererPool according to their content type.
// Diagrams become image links to a Kroki server:
//
//	pool, err := vorgaben.NewRendererPool(4, render.WithDiagramServer("https://kroki.io"))
//	exp, err := vorgaben.NewExporter(pool, vorgaben.WithStyle("print"))
//	defer exp.Close()
//
//	page, err := exp.HTML(ctx, doc, time.Now())
//	pdf, err := exp.PDF(ctx, page)
//
// # Browser Requirements
//
// PDF export requires Chrome/Chromium. The go-rod library downloads a
// managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package vorgaben
