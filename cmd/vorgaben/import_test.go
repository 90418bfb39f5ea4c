package main

import (
	"reflect"
	"strings"
	"testing"

	vorgaben "github.com/alnah/go-vorgaben"
)

// ---------------------------------------------------------------------------
// TestImport - End to end
// ---------------------------------------------------------------------------

func TestImport_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	src := writeSource(t, cliSource)

	out := c.mustRun("import", src, "--id", "STD-9", "--name", "Kryptografie", "--doctype", "Standard", "--dry-run")
	for _, want := range []string{
		"Dry run",
		`Document STD-9 "Kryptografie" (Standard), new`,
		"Would create: 5 records (introduction 1, scope 1, requirements 1, short text 1, long text 0, checklist 1)",
		"dropped requirements: 1",
		"vorgaben add topic Recht",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output missing %q:\n%s", want, out)
		}
	}

	if code := c.run("export", "STD-9"); code != ExitUsage {
		t.Errorf("export after dry run: exit %d, want %d (document must not exist)", code, ExitUsage)
	}
}

func TestImport_ThenExport(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	src := writeSource(t, cliSource)
	args := []string{"import", src, "--id", "STD-9", "--name", "Kryptografie", "--doctype", "Standard", "--valid-from", "01.01.2026"}

	out := c.mustRun(args...)
	for _, want := range []string{"Imported STD-9", "created", "Created: 5 records", "New keywords: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("import output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(c.stderr.String(), "import complete") {
		t.Errorf("expected the import log record on stderr, got %q", c.stderr.String())
	}

	page := c.mustRun("export", "STD-9")
	for _, want := range []string{"Kryptografie", "STD-9.T.1", "TLS absichern", "01.01.2026", "TLS 1.2 oder höher."} {
		if !strings.Contains(page, want) {
			t.Errorf("exported page missing %q", want)
		}
	}

	checklist := c.mustRun("export", "STD-9", "--format", "checklist")
	if !strings.Contains(checklist, "Ist TLS 1.0 deaktiviert?") {
		t.Error("checklist export lacks the checklist question")
	}
}

func TestImport_PurgeTwiceIsUnchanged(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	src := writeSource(t, cliSource)
	args := []string{"import", src, "--id", "STD-9", "--name", "Kryptografie", "--doctype", "Standard", "--purge"}

	c.mustRun(args...)
	first := c.mustRun("export", "STD-9")

	out := c.mustRun(args...)
	if !strings.Contains(out, "unchanged since the last purge import") {
		t.Errorf("second purge output = %q", out)
	}
	if second := c.mustRun("export", "STD-9"); second != first {
		t.Error("second purge import changed the exported document")
	}
}

func TestImport_Failures(t *testing.T) {
	t.Parallel()

	dropped := ">>> Vorgabe Technik\n>>> Nummer 1\n>>> Text\nohne Kurztext\n"

	tests := []struct {
		name       string
		source     string
		args       []string
		wantCode   int
		wantStderr []string
	}{
		{
			name:       "missing file",
			args:       []string{"--id", "X", "--name", "N", "--doctype", "Standard"},
			wantCode:   ExitIO,
			wantStderr: []string{"import file not found"},
		},
		{
			name:       "unknown document type",
			source:     cliSource,
			args:       []string{"--id", "X", "--name", "N", "--doctype", "IT Richtlinie"},
			wantCode:   ExitUsage,
			wantStderr: []string{"unknown document type", `vorgaben add doctype "IT Richtlinie"`},
		},
		{
			name:       "missing metadata",
			source:     cliSource,
			args:       []string{"--id", "X", "--doctype", "Standard"},
			wantCode:   ExitUsage,
			wantStderr: []string{"invalid document metadata"},
		},
		{
			name:       "invalid date",
			source:     cliSource,
			args:       []string{"--id", "X", "--name", "N", "--doctype", "Standard", "--valid-from", "morgen"},
			wantCode:   ExitUsage,
			wantStderr: []string{"--valid-from", "invalid date"},
		},
		{
			name:       "strict with dropped content",
			source:     dropped,
			args:       []string{"--id", "X", "--name", "N", "--doctype", "Standard", "--strict"},
			wantCode:   ExitUsage,
			wantStderr: []string{"content outside of any section", "--strict"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := seeded(t)
			path := "does-not-exist.txt"
			if tt.source != "" {
				path = writeSource(t, tt.source)
			}
			code := c.run(append([]string{"import", path}, tt.args...)...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, c.stderr.String())
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(c.stderr.String(), want) {
					t.Errorf("stderr %q does not contain %q", c.stderr.String(), want)
				}
			}
		})
	}
}

func TestImport_VerboseListsWarnings(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	src := writeSource(t, cliSource)

	out := c.mustRun("import", src, "--id", "STD-9", "--name", "K", "--doctype", "Standard", "--verbose")
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "unresolved-topic") {
		t.Errorf("verbose output lacks the warning list:\n%s", out)
	}
	if !strings.Contains(c.stderr.String(), "level=DEBUG") {
		t.Error("--verbose did not enable debug logging")
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestDroppedTopics(t *testing.T) {
	t.Parallel()

	got := droppedTopics([]vorgaben.Requirement{
		{Topic: "Recht"}, {Topic: ""}, {Topic: "Physische Sicherheit"}, {Topic: "Recht"},
	})
	want := []string{"Recht", "Physische Sicherheit"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("droppedTopics() = %v, want %v", got, want)
	}
}

func TestContentCounts(t *testing.T) {
	t.Parallel()

	c := vorgaben.Content{
		Introduction: make([]vorgaben.Section, 2),
		Requirements: []vorgaben.Requirement{
			{ShortText: make([]vorgaben.Section, 1), Checklist: []string{"a", "b"}},
			{LongText: make([]vorgaben.Section, 3)},
		},
	}
	want := vorgaben.PurgeCounts{Introduction: 2, Requirements: 2, ShortText: 1, LongText: 3, Checklist: 2}
	if got := contentCounts(c); got != want {
		t.Errorf("contentCounts() = %+v, want %+v", got, want)
	}
}
