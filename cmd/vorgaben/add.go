package main

import (
	"context"
	"fmt"
	"strings"
)

// Reference data kinds for the add command.
const (
	kindTopic   = "topic"
	kindDoctype = "doctype"
)

// runAdd registers a topic or document type. Adding an existing name is
// not an error.
func runAdd(ctx context.Context, args []string, env *Environment) error {
	f := &addFlags{}
	positional, err := parseFlags(addFlagSet(f, env.Stderr), args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return fmt.Errorf("%w: add takes a kind (topic or doctype) and a name", ErrUsage)
	}
	kind, name := positional[0], positional[1]

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var created bool
	switch kind {
	case kindTopic:
		created, err = store.AddTopic(ctx, name, f.description)
	case kindDoctype:
		created, err = store.AddDocumentType(ctx, name, f.description)
	default:
		return fmt.Errorf("%w: unknown kind %q (must be topic or doctype)", ErrUsage, kind)
	}
	if err != nil {
		return err
	}

	if !f.common.quiet {
		label := "Topic"
		if kind == kindDoctype {
			label = "Document type"
		}
		if created {
			fmt.Fprintf(env.Stdout, "%s %q added.\n", label, strings.TrimSpace(name))
		} else {
			fmt.Fprintf(env.Stdout, "%s %q already exists.\n", label, strings.TrimSpace(name))
		}
	}
	return nil
}
