// Package parser turns structured import files into document content.
//
// An import file is a sequence of blocks separated by lines starting with
// ">>>". The first line of a block is its header, the rest its body:
//
//	>>> Einleitung
//	>>> Text
//	Dieser Standard regelt ...
//	>>> Vorgabe Technik
//	>>> Nummer 3
//	>>> Titel Verschlüsselung
//	>>> Kurztext
//	>>> Liste-Ungeordnet
//	TLS 1.2 oder höher
//	AES-256
//	>>> Stichworte Krypto, TLS
//	>>> Checkliste
//	Ist TLS aktiviert?
//
// Parsing runs in four stages: Tokenize splits blocks, Classify maps each
// header to a Kind, Step advances the State over the block sequence, and a
// Builder assembles the result.
package parser

import "github.com/alnah/go-vorgaben/internal/model"

// Result is the outcome of parsing one file.
type Result struct {
	Content  model.Content
	Warnings []model.Warning
	Blocks   int
}

// TraceFunc observes each block after it has been processed.
type TraceFunc func(b Block, h Header, next Context)

// Option configures Parse.
type Option func(*options)

type options struct {
	trace TraceFunc
}

// WithTrace registers a function called once per block.
func WithTrace(fn TraceFunc) Option {
	return func(o *options) {
		o.trace = fn
	}
}

// Parse tokenizes, classifies and assembles text. It never fails: anomalies
// are reported as warnings.
func Parse(text string, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	blocks := Tokenize(text)
	builder := NewBuilder()

	var (
		state    State
		warnings []model.Warning
	)
	for _, b := range blocks {
		h := Classify(b.Header)
		var ws []model.Warning
		state, ws = Step(state, b, h, builder)
		warnings = append(warnings, ws...)
		if o.trace != nil {
			o.trace(b, h, state.Context)
		}
	}
	warnings = append(warnings, Finish(state, builder)...)

	return Result{
		Content:  builder.Build(),
		Warnings: warnings,
		Blocks:   len(blocks),
	}
}
