package main

import "errors"

// CLI errors. Library errors are mapped in exit_codes.go.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrReadInput        = errors.New("cannot read input")
	ErrWriteOutput      = errors.New("cannot write output")
	ErrUnsupportedShell = errors.New("unsupported shell")
)
