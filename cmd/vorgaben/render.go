package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-vorgaben/internal/diagram"
	"github.com/alnah/go-vorgaben/internal/fileutil"
	"github.com/alnah/go-vorgaben/internal/model"
	"github.com/alnah/go-vorgaben/internal/parser"
	"github.com/alnah/go-vorgaben/internal/render"
)

// runRender renders a single section read from a file or stdin, the way
// export renders stored sections.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f := &renderFlags{}
	positional, err := parseFlags(renderFlagSet(f, env.Stderr), args)
	if err != nil {
		return err
	}

	if f.decode {
		return decodeDiagram(positional, env)
	}

	if len(positional) < 1 || len(positional) > 2 {
		return fmt.Errorf("%w: render takes a content type and an optional file", ErrUsage)
	}
	ct, ok := model.ParseContentType(positional[0])
	if !ok {
		return fmt.Errorf("%w: unknown content type %q (one of: %s)", ErrUsage, positional[0], contentTypeList())
	}

	var input string
	if len(positional) == 2 && positional[1] != "-" {
		input, err = fileutil.ReadText(positional[1])
	} else {
		input, err = readStdin(env)
	}
	if err != nil {
		return err
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	r, err := render.New(renderOptions(cfg)...)
	if err != nil {
		return err
	}
	html, err := r.Render(ctx, ct, parser.SectionText(input))
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, html)
	return nil
}

// decodeDiagram prints the source behind a diagram URL token.
func decodeDiagram(positional []string, env *Environment) error {
	var token string
	switch len(positional) {
	case 0:
		in, err := readStdin(env)
		if err != nil {
			return err
		}
		token = in
	case 1:
		token = positional[0]
	default:
		return fmt.Errorf("%w: --decode takes at most one token", ErrUsage)
	}

	// Accept a full diagram URL as well as the bare token.
	token = strings.TrimSpace(token)
	if i := strings.LastIndex(token, "/"); i >= 0 {
		token = token[i+1:]
	}
	source, err := diagram.Decode(token)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, source)
	return nil
}

func readStdin(env *Environment) (string, error) {
	if env.Stdin == nil {
		return "", fmt.Errorf("%w: no input", ErrReadInput)
	}
	data, err := io.ReadAll(env.Stdin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(data), nil
}

func contentTypeList() string {
	types := model.ContentTypes()
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = ct.String()
	}
	return strings.Join(names, ", ")
}
