package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vorgaben <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  import      Import a requirements file into the database")
	fmt.Fprintln(w, "  export      Export a stored document as HTML, checklist or PDF")
	fmt.Fprintln(w, "  render      Render one section from a file or stdin")
	fmt.Fprintln(w, "  add         Register a topic or document type")
	fmt.Fprintln(w, "  config      Print the effective configuration")
	fmt.Fprintln(w, "  doctor      Check the system for common problems")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'vorgaben help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --db <path>           SQLite database (default vorgaben.db)")
	fmt.Fprintln(w, "  -q, --quiet               Only print errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging and full warning list")
}

func printImportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vorgaben import <file> --id <id> --name <name> --doctype <type> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Parse an import file and store its introduction, scope and requirements.")
	fmt.Fprintln(w, "Requirements whose topic is unknown are skipped with a warning.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --id <id>             Document identifier (required)")
	fmt.Fprintln(w, "      --name <name>         Document name (required)")
	fmt.Fprintln(w, "      --doctype <type>      Registered document type (required)")
	fmt.Fprintln(w, "      --valid-from <date>   YYYY-MM-DD, DD.MM.YYYY or today")
	fmt.Fprintln(w, "      --valid-until <date>  YYYY-MM-DD, DD.MM.YYYY or today")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Mode:")
	fmt.Fprintln(w, "  -n, --dry-run             Show what would be imported, write nothing")
	fmt.Fprintln(w, "      --purge               Replace the document's existing content")
	fmt.Fprintln(w, "      --strict              Fail on content outside any section")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  vorgaben import std7.txt --id STD-7 --name \"Kryptografie\" --doctype Standard --dry-run")
	fmt.Fprintln(w, "  vorgaben import std7.txt --id STD-7 --name \"Kryptografie\" --doctype Standard --purge")
}

func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vorgaben export <id> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a stored document. HTML and checklist go to stdout unless -o is")
	fmt.Fprintln(w, "given; PDF defaults to <id>.pdf and needs Chrome/Chromium.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -f, --format <s>          html, checklist, pdf (default html)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (- for stdout)")
	fmt.Fprintln(w, "      --date <date>         Check date for requirement status (default today)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vorgaben render <content-type> [file]")
	fmt.Fprintln(w, "       vorgaben render --decode <token|url>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one section to HTML. Reads stdin when no file is given.")
	fmt.Fprintf(w, "Content types: %s (or their import labels)\n", contentTypeList())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --decode              Print the source behind a diagram token")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printAddUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vorgaben add topic|doctype <name> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Register a topic or document type. Existing names are left unchanged.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -d, --description <s>     Optional description")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vorgaben config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML.")
	fmt.Fprintln(w, "Precedence: flags > VORGABEN_* environment > config file > defaults.")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  VORGABEN_CONFIG, VORGABEN_DB, VORGABEN_DIAGRAM_SERVER, VORGABEN_STYLE,")
	fmt.Fprintln(w, "  VORGABEN_TIMEOUT, VORGABEN_WORKERS, VORGABEN_LOG_LEVEL, VORGABEN_LOG_FORMAT")
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vorgaben doctor [--json] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the database, Chrome/Chromium and the environment.")
	fmt.Fprintln(w, "Exits 1 when an error was found.")
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vorgaben completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells: bash, zsh, fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:  eval \"$(vorgaben completion bash)\"")
	fmt.Fprintln(w, "  Zsh:   eval \"$(vorgaben completion zsh)\"")
	fmt.Fprintln(w, "  Fish:  vorgaben completion fish > ~/.config/fish/completions/vorgaben.fish")
}

func printVersionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vorgaben version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show version information.")
}

// runHelp prints help for args[0], or the main usage.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	usages := map[string]func(io.Writer){
		"import":     printImportUsage,
		"export":     printExportUsage,
		"render":     printRenderUsage,
		"add":        printAddUsage,
		"config":     printConfigUsage,
		"doctor":     printDoctorUsage,
		"completion": printCompletionUsage,
		"version":    printVersionUsage,
		"help":       printUsage,
	}
	usage, ok := usages[args[0]]
	if !ok {
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	usage(env.Stdout)
	return ExitSuccess
}
