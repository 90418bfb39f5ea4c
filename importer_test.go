package vorgaben

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-vorgaben/internal/logging"
	"github.com/alnah/go-vorgaben/internal/model"
)

const importSource = `>>> Einleitung
>>> Text
Dieser Standard regelt den Betrieb von Containern.
>>> Geltungsbereich
>>> Liste-Ungeordnet
Kubernetes-Cluster
Registries
>>> Vorgabe Technik
>>> Nummer 1
>>> Titel Images signieren
>>> Kurztext
>>> Text
Images müssen signiert sein.
>>> Langtext
>>> Text
Die Signatur wird beim Deployment geprüft.
>>> Stichworte Container, Signatur
>>> Checkliste
Werden alle Images signiert?
Wird die Signatur geprüft?
>>> Vorgabe Organisation
>>> Nummer 2
>>> Titel Verantwortung
>>> Kurztext
>>> Liste-Geordnet
Betreiber benennen
Vertretung regeln
>>> Stichworte Container
`

var importClock = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

func testMeta() Metadata {
	return Metadata{DocumentID: "STD-7", Name: "Container", DocumentType: "Standard"}
}

func newTestImporter(store Store, opts ...Option) *Importer {
	base := []Option{
		WithClock(func() time.Time { return importClock }),
		WithRunID(func() string { return "run-1" }),
	}
	return NewImporter(store, append(base, opts...)...)
}

// ---------------------------------------------------------------------------
// Preview
// ---------------------------------------------------------------------------

func TestImporter_PreviewWritesNothing(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	im := newTestImporter(store)

	plan, err := im.Preview(context.Background(), importSource, testMeta())
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if store.begins != 0 {
		t.Errorf("Preview started %d transactions", store.begins)
	}
	if plan.DocumentExists {
		t.Error("DocumentExists = true for an empty store")
	}
	if plan.RunID != "run-1" || plan.Digest != Digest(importSource, testMeta()) {
		t.Errorf("plan identity = %q / %q", plan.RunID, plan.Digest)
	}
	if got := len(plan.Document.Requirements); got != 2 {
		t.Fatalf("planned requirements = %d, want 2", got)
	}
	for _, r := range plan.Document.Requirements {
		if !r.ValidFrom.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("requirement %d ValidFrom = %v, want import day", r.Number, r.ValidFrom)
		}
	}
	if plan.Blocks == 0 {
		t.Error("Blocks = 0")
	}
}

func TestImporter_PreviewReportsPurgeCounts(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	im := newTestImporter(store)
	ctx := context.Background()

	if _, err := im.Execute(ctx, importSource, testMeta(), ImportOptions{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	plan, err := im.Preview(ctx, importSource, testMeta())
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	want := PurgeCounts{Introduction: 1, Scope: 1, Requirements: 2, ShortText: 2, LongText: 1, Checklist: 2}
	if !plan.DocumentExists || plan.WouldPurge != want {
		t.Errorf("plan = exists %v, would purge %+v; want %+v", plan.DocumentExists, plan.WouldPurge, want)
	}
}

func TestImporter_Preconditions(t *testing.T) {
	t.Parallel()

	until := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		meta    Metadata
		wantErr error
	}{
		{
			name:    "unknown document type",
			meta:    Metadata{DocumentID: "X", Name: "X", DocumentType: "Richtlinie"},
			wantErr: ErrUnknownDocumentType,
		},
		{
			name:    "missing id",
			meta:    Metadata{Name: "X", DocumentType: "Standard"},
			wantErr: ErrInvalidMetadata,
		},
		{
			name:    "validity window reversed",
			meta:    Metadata{DocumentID: "X", Name: "X", DocumentType: "Standard", ValidFrom: &from, ValidUntil: &until},
			wantErr: ErrInvalidMetadata,
		},
		{
			name:    "id too long",
			meta:    Metadata{DocumentID: strings.Repeat("x", MaxDocumentIDLength+1), Name: "X", DocumentType: "Standard"},
			wantErr: ErrInvalidMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newMemStore()
			_, err := newTestImporter(store).Execute(context.Background(), importSource, tt.meta, ImportOptions{Purge: true})
			if !errors.Is(err, ErrFatalPrecondition) || !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want ErrFatalPrecondition and %v", err, tt.wantErr)
			}
			if store.begins != 0 {
				t.Errorf("transaction started despite failed precondition")
			}
		})
	}
}

func TestImporter_UnresolvedTopicDropsRequirement(t *testing.T) {
	t.Parallel()

	src := importSource + ">>> Vorgabe Recht\n>>> Nummer 3\n>>> Titel Verträge\n>>> Kurztext\n>>> Text\nVerträge prüfen.\n"
	store := newMemStore()

	res, err := newTestImporter(store).Execute(context.Background(), src, testMeta(), ImportOptions{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Dropped) != 1 || res.Dropped[0].Topic != "Recht" {
		t.Fatalf("Dropped = %+v, want the Recht requirement", res.Dropped)
	}
	if res.Created.Requirements != 2 {
		t.Errorf("Created.Requirements = %d, want 2", res.Created.Requirements)
	}
	if !hasWarning(res.Warnings, model.WarnUnresolvedTopic) {
		t.Errorf("warnings %v lack unresolved-topic", res.Warnings)
	}
}

func TestImporter_UnknownContentTypeFallsBackToText(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	delete(store.contentTypes, "ordered-list")

	plan, err := newTestImporter(store).Preview(context.Background(), importSource, testMeta())
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	second := plan.Document.Requirements[1]
	if second.ShortText[0].ContentType != model.ContentText {
		t.Errorf("ContentType = %v, want text", second.ShortText[0].ContentType)
	}
	if !hasWarning(plan.Warnings, model.WarnUnknownContentType) {
		t.Errorf("warnings %v lack unknown-content-type", plan.Warnings)
	}
}

// ---------------------------------------------------------------------------
// Execute
// ---------------------------------------------------------------------------

func TestImporter_ExecuteCreates(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	res, err := newTestImporter(store).Execute(context.Background(), importSource, testMeta(), ImportOptions{Purge: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !res.DocumentCreated || res.Skipped {
		t.Errorf("DocumentCreated = %v, Skipped = %v", res.DocumentCreated, res.Skipped)
	}
	if res.Purged.Total() != 0 {
		t.Errorf("Purged = %+v on a new document", res.Purged)
	}
	want := PurgeCounts{Introduction: 1, Scope: 1, Requirements: 2, ShortText: 2, LongText: 1, Checklist: 2}
	if res.Created != want {
		t.Errorf("Created = %+v, want %+v", res.Created, want)
	}
	if res.KeywordsCreated != 2 {
		t.Errorf("KeywordsCreated = %d, want 2 (Container shared)", res.KeywordsCreated)
	}

	snap := store.snapshot("STD-7")
	if snap.Record.Name != "Container" {
		t.Errorf("stored name = %q", snap.Record.Name)
	}
	if got := snap.Requirements[1].Keywords; !reflect.DeepEqual(got, []string{"Container"}) {
		t.Errorf("second requirement keywords = %v", got)
	}
	last, _ := store.LastImport(context.Background(), "STD-7")
	if last == nil || !last.Purge || last.RunID != "run-1" || !last.ImportedAt.Equal(importClock) {
		t.Errorf("LastImport = %+v", last)
	}
}

func TestImporter_PurgeIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	ctx := context.Background()
	first, err := newTestImporter(store).Execute(ctx, importSource, testMeta(), ImportOptions{Purge: true})
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	before := store.snapshot("STD-7")

	later := newTestImporter(store, WithClock(func() time.Time { return importClock.AddDate(0, 1, 0) }))
	second, err := later.Execute(ctx, importSource, testMeta(), ImportOptions{Purge: true})
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}

	if !second.Skipped {
		t.Error("second purge import of the same source was not skipped")
	}
	if second.Purged.Total() != 0 || second.Created.Total() != 0 {
		t.Errorf("second run changed data: purged %+v, created %+v", second.Purged, second.Created)
	}
	if store.begins != 1 {
		t.Errorf("begins = %d, want 1", store.begins)
	}
	if after := store.snapshot("STD-7"); !reflect.DeepEqual(before, after) {
		t.Errorf("store changed:\nbefore %+v\nafter  %+v", before, after)
	}
	if first.Digest != second.Digest {
		t.Errorf("digest differs for identical input")
	}
}

func TestImporter_PurgeReplacesChangedSource(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	ctx := context.Background()
	im := newTestImporter(store)
	if _, err := im.Execute(ctx, importSource, testMeta(), ImportOptions{Purge: true}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	changed := strings.Replace(importSource, "Images müssen signiert sein.", "Images müssen immer signiert sein.", 1)
	res, err := im.Execute(ctx, changed, testMeta(), ImportOptions{Purge: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Skipped || res.DocumentCreated {
		t.Errorf("Skipped = %v, DocumentCreated = %v", res.Skipped, res.DocumentCreated)
	}
	if res.Purged != res.Created {
		t.Errorf("Purged %+v != Created %+v for same-shaped source", res.Purged, res.Created)
	}
	snap := store.snapshot("STD-7")
	if len(snap.Requirements) != 2 || snap.Requirements[0].ShortText[0].Text != "Images müssen immer signiert sein." {
		t.Errorf("requirements after purge = %+v", snap.Requirements)
	}
	if res.KeywordsCreated != 0 {
		t.Errorf("KeywordsCreated = %d, keywords are global and survive the purge", res.KeywordsCreated)
	}
}

func TestImporter_WithoutPurgeAppends(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	ctx := context.Background()
	im := newTestImporter(store)
	for range 2 {
		if _, err := im.Execute(ctx, importSource, testMeta(), ImportOptions{}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}
	snap := store.snapshot("STD-7")
	if got := len(snap.Requirements); got != 4 {
		t.Errorf("requirements = %d, want 4 after two appending imports", got)
	}
	for name, sections := range map[string][]Section{"introduction": snap.Introduction, "scope": snap.Scope} {
		var orders []int
		for _, s := range sections {
			orders = append(orders, s.Order)
		}
		if !reflect.DeepEqual(orders, []int{0, 1}) {
			t.Errorf("%s orders = %v, want [0 1]", name, orders)
		}
	}
}

func TestImporter_PurgeAfterCatalogChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		hide   func(*memStore)
		reveal func(*memStore)
		check  func(*testing.T, snapshot)
	}{
		{
			name:   "topic registered",
			hide:   func(m *memStore) { delete(m.topics, "Organisation") },
			reveal: func(m *memStore) { m.topics["Organisation"] = true },
			check: func(t *testing.T, snap snapshot) {
				if got := len(snap.Requirements); got != 2 {
					t.Errorf("stored requirements = %d, want 2", got)
				}
			},
		},
		{
			name:   "content type registered",
			hide:   func(m *memStore) { delete(m.contentTypes, "ordered-list") },
			reveal: func(m *memStore) { m.contentTypes["ordered-list"] = true },
			check: func(t *testing.T, snap snapshot) {
				if got := snap.Requirements[1].ShortText[0].ContentType; got != model.ContentOrderedList {
					t.Errorf("content type = %v, want ordered-list", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newMemStore()
			tt.hide(store)
			im := newTestImporter(store)
			ctx := context.Background()

			first, err := im.Execute(ctx, importSource, testMeta(), ImportOptions{Purge: true})
			if err != nil {
				t.Fatalf("first Execute() error = %v", err)
			}

			tt.reveal(store)
			second, err := im.Execute(ctx, importSource, testMeta(), ImportOptions{Purge: true})
			if err != nil {
				t.Fatalf("second Execute() error = %v", err)
			}
			if second.Skipped {
				t.Fatal("second purge import was skipped although the catalog changed")
			}
			if first.Digest == second.Digest {
				t.Error("digest did not change with the catalog")
			}
			tt.check(t, store.snapshot("STD-7"))

			third, err := im.Execute(ctx, importSource, testMeta(), ImportOptions{Purge: true})
			if err != nil {
				t.Fatalf("third Execute() error = %v", err)
			}
			if !third.Skipped {
				t.Error("third purge import with an unchanged catalog was not skipped")
			}
		})
	}
}

func TestImporter_ExistingDocumentKeepsMetadata(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	ctx := context.Background()
	im := newTestImporter(store)
	if _, err := im.Execute(ctx, importSource, testMeta(), ImportOptions{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	renamed := testMeta()
	renamed.Name = "Neuer Name"
	res, err := im.Execute(ctx, importSource, renamed, ImportOptions{Purge: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.DocumentCreated {
		t.Error("DocumentCreated = true for existing document")
	}
	if got := store.snapshot("STD-7").Record.Name; got != "Container" {
		t.Errorf("stored name = %q, want original", got)
	}
}

func TestImporter_StrictRejectsDroppedContent(t *testing.T) {
	t.Parallel()

	src := ">>> Vorgabe Technik\n>>> Nummer 1\n>>> Text\nverloren\n>>> Kurztext\n>>> Text\nbehalten\n"
	store := newMemStore()
	im := newTestImporter(store)

	_, err := im.Execute(context.Background(), src, testMeta(), ImportOptions{Strict: true})
	if !errors.Is(err, ErrDroppedContent) {
		t.Fatalf("Execute() error = %v, want ErrDroppedContent", err)
	}
	if store.begins != 0 {
		t.Error("strict failure still started a transaction")
	}

	res, err := im.Execute(context.Background(), src, testMeta(), ImportOptions{})
	if err != nil {
		t.Fatalf("lenient Execute() error = %v", err)
	}
	if res.DroppedContent() != 1 {
		t.Errorf("DroppedContent() = %d, want 1", res.DroppedContent())
	}
}

func TestImporter_FailureRollsBack(t *testing.T) {
	t.Parallel()

	for _, op := range []string{"EnsureDocument", "DeleteRequirements", "CreateRequirement", "Commit"} {
		t.Run(op, func(t *testing.T) {
			t.Parallel()

			store := newMemStore()
			ctx := context.Background()
			im := newTestImporter(store)
			if _, err := im.Execute(ctx, importSource, testMeta(), ImportOptions{}); err != nil {
				t.Fatalf("setup Execute() error = %v", err)
			}
			before := store.snapshot("STD-7")

			store.failOn = op
			changed := strings.ReplaceAll(importSource, "Container", "Pod")
			_, err := im.Execute(ctx, changed, testMeta(), ImportOptions{Purge: true})
			if !errors.Is(err, ErrStore) || !errors.Is(err, errInjected) {
				t.Fatalf("Execute() error = %v, want ErrStore wrapping the failure", err)
			}
			if after := store.snapshot("STD-7"); !reflect.DeepEqual(before, after) {
				t.Errorf("failed import left changes behind")
			}
		})
	}
}

func TestImporter_Logging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New(&buf, "debug", logging.FormatText)
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}
	im := newTestImporter(newMemStore(), WithLogger(logger))
	if _, err := im.Execute(context.Background(), importSource, testMeta(), ImportOptions{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"msg=block", "msg=\"import complete\"", "run_id=run-1", "document=STD-7"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output lacks %q:\n%s", want, out)
		}
	}
}

func hasWarning(ws []Warning, kind model.WarningKind) bool {
	for _, w := range ws {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
