package main

import (
	"fmt"

	"github.com/alnah/go-vorgaben/internal/yamlutil"
)

// runConfig prints the effective configuration as YAML, after config file,
// environment and flag overrides.
func runConfig(args []string, env *Environment) error {
	f := &commonFlags{}
	positional, err := parseFlags(configFlagSet(f, env.Stderr), args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return fmt.Errorf("%w: config takes no arguments", ErrUsage)
	}

	cfg, err := loadConfig(f, env)
	if err != nil {
		return err
	}
	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}
