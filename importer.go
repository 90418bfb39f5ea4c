package vorgaben

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-vorgaben/internal/logging"
	"github.com/alnah/go-vorgaben/internal/model"
	"github.com/alnah/go-vorgaben/internal/parser"
)

// Importer turns import files into stored documents.
//
// Concurrent imports of the same document are not coordinated here and
// must be serialized by the caller.
type Importer struct {
	store    Store
	logger   *slog.Logger
	now      func() time.Time
	newRunID func() string
}

// NewImporter creates an Importer backed by store.
func NewImporter(store Store, opts ...Option) *Importer {
	im := &Importer{
		store:    store,
		logger:   logging.Discard(),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Preview parses text and resolves references without writing anything.
// An unknown document type fails before parsing; unresolved topics drop
// the affected requirement with a warning.
func (im *Importer) Preview(ctx context.Context, text string, meta Metadata) (*ImportPlan, error) {
	return im.plan(ctx, text, meta)
}

// Execute runs Preview and stores the result in a single transaction.
func (im *Importer) Execute(ctx context.Context, text string, meta Metadata, opts ImportOptions) (*ImportResult, error) {
	plan, err := im.plan(ctx, text, meta)
	if err != nil {
		return nil, err
	}
	if n := plan.DroppedContent(); opts.Strict && n > 0 {
		return nil, fmt.Errorf("%w: %d block(s) dropped", ErrDroppedContent, n)
	}

	result := &ImportResult{ImportPlan: *plan}
	ctx = logging.WithRunID(ctx, plan.RunID)
	log := logging.FromContext(ctx, im.logger).With("document", meta.DocumentID, "digest", plan.Digest)

	if opts.Purge {
		last, err := im.store.LastImport(ctx, meta.DocumentID)
		if err != nil {
			return nil, storeError("reading import history", err)
		}
		if last != nil && last.Purge && last.Digest == plan.Digest {
			result.Skipped = true
			log.Info("import skipped, source unchanged since last purge", "last_run_id", last.RunID)
			return result, nil
		}
	}

	if err := im.write(ctx, result, meta, opts); err != nil {
		return nil, err
	}

	log.Info("import complete",
		"purge", opts.Purge,
		"purged", result.Purged.Total(),
		"created", result.Created.Total(),
		"keywords_created", result.KeywordsCreated,
		"dropped", len(result.Dropped),
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// DroppedContent counts the dropped-content warnings of the plan.
func (p *ImportPlan) DroppedContent() int {
	n := 0
	for _, w := range p.Warnings {
		if w.Kind == model.WarnDroppedContent {
			n++
		}
	}
	return n
}

func (im *Importer) plan(ctx context.Context, text string, meta Metadata) (*ImportPlan, error) {
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFatalPrecondition, err)
	}
	ok, err := im.store.DocumentTypeExists(ctx, meta.DocumentType)
	if err != nil {
		return nil, storeError("looking up document type", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", ErrFatalPrecondition, ErrUnknownDocumentType, meta.DocumentType)
	}

	plan := &ImportPlan{RunID: im.newRunID()}
	log := logging.FromContext(logging.WithRunID(ctx, plan.RunID), im.logger).With("document", meta.DocumentID)

	parsed := parser.Parse(text, parser.WithTrace(func(b parser.Block, h parser.Header, next parser.Context) {
		log.Debug("block", "index", b.Index, "kind", h.Kind.String(), "context", next.String())
	}))
	plan.Blocks = parsed.Blocks
	plan.Warnings = parsed.Warnings

	r := &resolver{catalog: im.store, topics: map[string]bool{}, contentTypes: map[model.ContentType]bool{}}
	content, err := r.resolve(ctx, parsed.Content, im.today())
	if err != nil {
		return nil, err
	}
	plan.Dropped = r.dropped
	plan.Warnings = append(plan.Warnings, r.warnings...)
	plan.Digest = Digest(text, meta, r.warnings...)

	plan.Document = Document{
		ID:           meta.DocumentID,
		Name:         meta.Name,
		DocumentType: meta.DocumentType,
		ValidFrom:    meta.ValidFrom,
		ValidUntil:   meta.ValidUntil,
		Content:      content,
	}

	if plan.DocumentExists, err = im.store.DocumentExists(ctx, meta.DocumentID); err != nil {
		return nil, storeError("looking up document", err)
	}
	if plan.DocumentExists {
		if plan.WouldPurge, err = im.store.CountContent(ctx, meta.DocumentID); err != nil {
			return nil, storeError("counting content", err)
		}
	}

	for _, w := range plan.Warnings {
		log.Warn(w.Message, "kind", w.Kind.String(), "block", w.Block)
	}
	return plan, nil
}

// write performs every store mutation of one import inside one transaction.
func (im *Importer) write(ctx context.Context, result *ImportResult, meta Metadata, opts ImportOptions) (err error) {
	tx, err := im.store.Begin(ctx)
	if err != nil {
		return storeError("starting transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, storeError("rolling back", rbErr))
			}
		}
	}()

	id := meta.DocumentID
	if result.DocumentCreated, err = tx.EnsureDocument(ctx, meta.record()); err != nil {
		return storeError("creating document", err)
	}

	if opts.Purge {
		if result.Purged, err = purge(ctx, tx, id); err != nil {
			return err
		}
	}

	// Appending continues the stored order of document level sections.
	var base PurgeCounts
	if !opts.Purge {
		base = result.WouldPurge
	}

	content := result.Document.Content
	for _, s := range content.Introduction {
		s.Order += base.Introduction
		if err = tx.CreateIntroduction(ctx, id, s); err != nil {
			return storeError("creating introduction section", err)
		}
		result.Created.Introduction++
	}
	for _, s := range content.Scope {
		s.Order += base.Scope
		if err = tx.CreateScope(ctx, id, s); err != nil {
			return storeError("creating scope section", err)
		}
		result.Created.Scope++
	}

	keywords := map[string]int64{}
	for _, req := range content.Requirements {
		if err = im.writeRequirement(ctx, tx, id, req, keywords, result); err != nil {
			return err
		}
	}

	rec := ImportRecord{
		RunID:      result.RunID,
		DocumentID: id,
		Digest:     result.Digest,
		Purge:      opts.Purge,
		ImportedAt: im.now(),
	}
	if err = tx.RecordImport(ctx, rec); err != nil {
		return storeError("recording import", err)
	}
	if err = tx.Commit(); err != nil {
		return storeError("committing", err)
	}
	return nil
}

func (im *Importer) writeRequirement(ctx context.Context, tx Tx, documentID string, req Requirement, keywords map[string]int64, result *ImportResult) error {
	reqID, err := tx.CreateRequirement(ctx, documentID, req)
	if err != nil {
		return storeError(fmt.Sprintf("creating requirement %s %d", req.Topic, req.Number), err)
	}
	result.Created.Requirements++

	for _, s := range req.ShortText {
		if err := tx.CreateShortText(ctx, reqID, s); err != nil {
			return storeError("creating short text section", err)
		}
		result.Created.ShortText++
	}
	for _, s := range req.LongText {
		if err := tx.CreateLongText(ctx, reqID, s); err != nil {
			return storeError("creating long text section", err)
		}
		result.Created.LongText++
	}
	for i, q := range req.Checklist {
		if err := tx.CreateChecklistQuestion(ctx, reqID, q, i); err != nil {
			return storeError("creating checklist question", err)
		}
		result.Created.Checklist++
	}

	for _, name := range req.Keywords {
		kwID, ok := keywords[name]
		if !ok {
			var created bool
			if kwID, created, err = tx.GetOrCreateKeyword(ctx, name); err != nil {
				return storeError("creating keyword", err)
			}
			keywords[name] = kwID
			if created {
				result.KeywordsCreated++
			}
		}
		if err := tx.LinkKeyword(ctx, reqID, kwID); err != nil {
			return storeError("linking keyword", err)
		}
	}
	return nil
}

// purge deletes owned children before their parents.
func purge(ctx context.Context, tx Tx, documentID string) (PurgeCounts, error) {
	var counts PurgeCounts
	steps := []struct {
		what  string
		count *int
		del   func(context.Context, string) (int, error)
	}{
		{"checklist questions", &counts.Checklist, tx.DeleteChecklist},
		{"short text sections", &counts.ShortText, tx.DeleteShortText},
		{"long text sections", &counts.LongText, tx.DeleteLongText},
		{"requirements", &counts.Requirements, tx.DeleteRequirements},
		{"introduction sections", &counts.Introduction, tx.DeleteIntroduction},
		{"scope sections", &counts.Scope, tx.DeleteScope},
	}
	for _, step := range steps {
		n, err := step.del(ctx, documentID)
		if err != nil {
			return PurgeCounts{}, storeError("deleting "+step.what, err)
		}
		*step.count = n
	}
	return counts, nil
}

func (im *Importer) today() time.Time {
	now := im.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
