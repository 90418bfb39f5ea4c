// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-vorgaben/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors during PDF
// export, tailored to CI and container environments.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	hints = append(hints, "or export with --format html")

	return formatHints(hints)
}

// ForTimeout suggests a longer PDF timeout.
func ForTimeout() string {
	return format("raise export.timeout in the config for documents with many diagrams")
}

// ForConfigNotFound suggests --config or the user config location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	userDir := string(filepath.Separator) + "vorgaben" + string(filepath.Separator)
	for _, p := range searchedPaths {
		if strings.Contains(p, userDir) {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForStyleNotFound lists the available stylesheets.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForUnknownDocumentType shows how to register the document type.
func ForUnknownDocumentType(name string) string {
	return format("register it with: vorgaben add doctype " + quote(name))
}

// ForUnresolvedTopics shows how to register missing topics.
func ForUnresolvedTopics(topics []string) string {
	if len(topics) == 0 {
		return ""
	}
	cmds := make([]string, len(topics))
	for i, t := range topics {
		cmds[i] = "vorgaben add topic " + quote(t)
	}
	return format("skipped requirements can be imported after: " + strings.Join(cmds, "; "))
}

// ForDroppedContent explains where content blocks belong.
func ForDroppedContent() string {
	return format("content after a Vorgabe header needs a Kurztext or Langtext block first; rerun without --strict to skip it")
}

// ForDocumentNotFound suggests importing first.
func ForDocumentNotFound() string {
	return format("import it first with: vorgaben import <file> --id <id> --name <name> --doctype <type>")
}

// ForDatabase points at the database location settings.
func ForDatabase(path string) string {
	return format("check --db or database.path (currently " + quote(path) + ")")
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
