package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Desc     string
	TakesArg bool
	Values   []string // enum values
	FileGlob string   // extensions without dot, e.g. "yaml,yml"
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  []string // candidate values for the first positional argument
	Files bool     // positional arguments are files
}

// flagCompletionMeta maps flag names to completion hints. Names, types and
// descriptions come from the FlagSets.
var flagCompletionMeta = map[string]flagDef{
	"format": {Values: []string{formatHTML, formatChecklist, formatPDF}},
	"config": {FileGlob: "yaml,yml"},
	"db":     {FileGlob: "db,sqlite"},
}

// extractFlags converts a FlagSet into completion definitions.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var defs []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:     f.Name,
			Short:    f.Shorthand,
			Desc:     f.Usage,
			TakesArg: f.Value.Type() != "bool",
		}
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			fd.Values = meta.Values
			fd.FileGlob = meta.FileGlob
		}
		defs = append(defs, fd)
	})
	return defs
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	var (
		imp  importFlags
		exp  exportFlags
		ren  renderFlags
		add  addFlags
		cfg  commonFlags
		sink = io.Discard
	)
	return []commandDef{
		{Name: "import", Desc: "Import a requirements file into the database", Flags: extractFlags(importFlagSet(&imp, sink)), Files: true},
		{Name: "export", Desc: "Export a stored document as HTML, checklist or PDF", Flags: extractFlags(exportFlagSet(&exp, sink))},
		{Name: "render", Desc: "Render one section from a file or stdin", Flags: extractFlags(renderFlagSet(&ren, sink)), Args: strings.Split(contentTypeList(), ", "), Files: true},
		{Name: "add", Desc: "Register a topic or document type", Flags: extractFlags(addFlagSet(&add, sink)), Args: []string{kindTopic, kindDoctype}},
		{Name: "config", Desc: "Print the effective configuration", Flags: extractFlags(configFlagSet(&cfg, sink))},
		{Name: "doctor", Desc: "Check the system for common problems"},
		{Name: "completion", Desc: "Generate shell completion script", Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}

	b.WriteString("# bash completion for vorgaben\n")
	b.WriteString("_vorgaben() {\n")
	b.WriteString("    local cur prev cmd flags args\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(names, " "))
	b.WriteString("        return\n    fi\n\n")

	// Flag values, shared across commands.
	b.WriteString("    case \"$prev\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if seen[f.Long] || (len(f.Values) == 0 && f.FileGlob == "") {
				continue
			}
			seen[f.Long] = true
			fmt.Fprintf(&b, "        %s)\n", flagPattern(f))
			if len(f.Values) > 0 {
				fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(f.Values, " "))
			} else {
				fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -f -X '!*.@(%s)' -- \"$cur\") )\n", strings.ReplaceAll(f.FileGlob, ",", "|"))
			}
			b.WriteString("            return ;;\n")
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s) flags=%q; args=%q ;;\n", c.Name, bashFlags(c.Flags), strings.Join(c.Args, " "))
	}
	b.WriteString("    esac\n\n")
	b.WriteString("    if [[ \"$cur\" == -* ]]; then\n")
	b.WriteString("        COMPREPLY=( $(compgen -W \"$flags\" -- \"$cur\") )\n")
	b.WriteString("    elif [[ -n \"$args\" && $COMP_CWORD -eq 2 ]]; then\n")
	b.WriteString("        COMPREPLY=( $(compgen -W \"$args\" -- \"$cur\") )\n")
	b.WriteString("    else\n")
	b.WriteString("        COMPREPLY=( $(compgen -f -- \"$cur\") )\n")
	b.WriteString("    fi\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _vorgaben vorgaben\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// generateZsh wraps the bash script with zsh's bash completion emulation.
func generateZsh(w io.Writer) error {
	if _, err := io.WriteString(w, "#compdef vorgaben\nautoload -U +X bashcompinit && bashcompinit\n"); err != nil {
		return err
	}
	return generateBash(w)
}

func generateFish(w io.Writer) error {
	var b strings.Builder
	b.WriteString("# fish completion for vorgaben\n")
	b.WriteString("complete -c vorgaben -f\n")
	for _, c := range getCommands() {
		fmt.Fprintf(&b, "complete -c vorgaben -n __fish_use_subcommand -a %s -d %s\n", c.Name, fishQuote(c.Desc))
		cond := "__fish_seen_subcommand_from " + c.Name
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c vorgaben -n %s -a %s\n", fishQuote(cond), fishQuote(strings.Join(c.Args, " ")))
		}
		if c.Files {
			fmt.Fprintf(&b, "complete -c vorgaben -n %s -F\n", fishQuote(cond))
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c vorgaben -n %s -l %s", fishQuote(cond), f.Long)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			switch {
			case len(f.Values) > 0:
				fmt.Fprintf(&b, " -x -a %s", fishQuote(strings.Join(f.Values, " ")))
			case f.FileGlob != "":
				b.WriteString(" -r -F")
			case f.TakesArg:
				b.WriteString(" -x")
			}
			fmt.Fprintf(&b, " -d %s\n", fishQuote(f.Desc))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func flagPattern(f flagDef) string {
	if f.Short != "" {
		return "--" + f.Long + "|-" + f.Short
	}
	return "--" + f.Long
}

func bashFlags(defs []flagDef) string {
	var parts []string
	for _, f := range defs {
		parts = append(parts, "--"+f.Long)
		if f.Short != "" {
			parts = append(parts, "-"+f.Short)
		}
	}
	return strings.Join(parts, " ")
}

func fishQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}
