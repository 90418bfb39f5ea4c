package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-vorgaben/internal/config"
	"github.com/alnah/go-vorgaben/internal/fileutil"
	"github.com/alnah/go-vorgaben/internal/sqlstore"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"`
	Chrome   chromeInfo   `json:"chrome"`
	Database databaseInfo `json:"database"`
	Diagram  diagramInfo  `json:"diagram"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type databaseInfo struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	OK     bool   `json:"ok"`
}

type diagramInfo struct {
	Server string `json:"server"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code:
// ExitGeneral when an error was found, ExitSuccess otherwise.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	var (
		common     commonFlags
		jsonOutput bool
	)
	fs := newFlagSet("doctor", printDoctorUsage, env.Stderr)
	fs.BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	addCommonFlags(fs, &common)
	if _, err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	cfg, err := loadConfig(&common, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}

	result := runDoctor(ctx, cfg)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config) *doctorResult {
	result := &doctorResult{
		Status:  statusReady,
		Diagram: diagramInfo{Server: cfg.Diagram.Server},
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkEnvironment(result)
	checkSystem(result)
	checkDatabase(ctx, result, cfg.Database.Path)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkChrome locates Chrome/Chromium. A missing browser only affects PDF
// export, so it is a warning.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		if chromePath, found = launcher.LookPath(); !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found, PDF export unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	if out, err := exec.Command(chromePath, "--version").Output(); err == nil { // #nosec G204 -- browser path from rod lookup or ROD_BROWSER_BIN
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// ciVars are set by the CI systems we know of.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()
	result.Env.CI = slices.ContainsFunc(ciVars, func(v string) bool { return os.Getenv(v) != "" })

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Chrome needs ROD_NO_SANDBOX=1 in containers and CI")
	}
}

// containerSignals are checked in order; the first match names the hint.
var containerSignals = []struct {
	hint   string
	detect func() (bool, string)
}{
	{"VORGABEN_CONTAINER=1", func() (bool, string) { return os.Getenv("VORGABEN_CONTAINER") == "1", "" }},
	{"/.dockerenv", func() (bool, string) { return fileutil.FileExists("/.dockerenv"), "" }},
	{"container=", func() (bool, string) { v := os.Getenv("container"); return v != "", v }},
	{"KUBERNETES_SERVICE_HOST", func() (bool, string) { return os.Getenv("KUBERNETES_SERVICE_HOST") != "", "" }},
}

func isContainer() (bool, string) {
	for _, sig := range containerSignals {
		if ok, value := sig.detect(); ok {
			return true, sig.hint + value
		}
	}
	return false, ""
}

func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "vorgaben-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// checkDatabase opens an existing database, which also applies pending
// migrations. A missing file is only reported; import and add create it.
func checkDatabase(ctx context.Context, result *doctorResult, path string) {
	result.Database.Path = path
	if !fileutil.FileExists(path) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Database %s does not exist yet, it is created by the first import or add", path))
		return
	}
	result.Database.Exists = true

	store, err := sqlstore.Open(ctx, path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	_ = store.Close()
	result.Database.OK = true
}

// report writes one "[LEVEL] message" line of the human-readable result.
func report(w io.Writer, level, format string, args ...any) {
	fmt.Fprintf(w, "  [%s] %s\n", level, fmt.Sprintf(format, args...))
}

// printDoctorResult writes the result grouped by subsystem.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintf(w, "vorgaben doctor\n\nDatabase\n")
	switch {
	case r.Database.OK:
		report(w, "OK", "%s", r.Database.Path)
	case r.Database.Exists:
		report(w, "ERROR", "%s cannot be opened", r.Database.Path)
	default:
		report(w, "WARN", "%s not created yet", r.Database.Path)
	}

	fmt.Fprintf(w, "\nDiagrams\n")
	report(w, "OK", "Server: %s", r.Diagram.Server)

	fmt.Fprintf(w, "\nPDF export\n")
	if !r.Chrome.Found {
		report(w, "WARN", "Chrome/Chromium not found")
	} else {
		report(w, "OK", "Chrome: %s", r.Chrome.Path)
		if r.Chrome.Version != "" {
			report(w, "OK", "Version: %s", r.Chrome.Version)
		}
		sandbox := "enabled"
		if !r.Chrome.Sandbox {
			sandbox = "disabled (ROD_NO_SANDBOX=1)"
		}
		report(w, "OK", "Sandbox: %s", sandbox)
	}

	fmt.Fprintf(w, "\nEnvironment\n")
	report(w, "OK", "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		report(w, "OK", "Container: %s", r.Env.ContainerHint)
	}
	if r.Env.CI {
		report(w, "OK", "CI detected")
	}
	if r.System.TempWritable {
		report(w, "OK", "Temp directory writable")
	}

	if len(r.Warnings)+len(r.Errors) > 0 {
		fmt.Fprintf(w, "\nFindings\n")
	}
	for _, msg := range r.Warnings {
		report(w, "WARN", "%s", msg)
	}
	for _, msg := range r.Errors {
		report(w, "ERROR", "%s", msg)
	}

	statusText := map[string]string{
		statusReady:    "ready",
		statusWarnings: "ready with warnings",
		statusErrors:   "not ready, see errors above",
	}
	fmt.Fprintf(w, "\nStatus: %s\n", statusText[r.Status])
}
