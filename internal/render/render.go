// Package render turns typed section text into HTML fragments.
//
// Dispatch is on the section's content type:
//   - ordered and unordered lists: each non-empty line becomes a list item
//   - table: converted by [TableToHTML]
//   - diagram: an image referencing the diagram service
//   - code: Markdown output wrapped in <pre><code>
//   - text and anything else: Markdown with tables, attributes and footnotes
//
// A Renderer holds no mutable state after construction and is safe for
// concurrent use.
package render

import (
	"context"
	"errors"
	"strings"

	"github.com/alnah/go-vorgaben/internal/diagram"
	"github.com/alnah/go-vorgaben/internal/model"
)

// DefaultDiagramServer is the diagram service used when none is configured.
const DefaultDiagramServer = "https://kroki.io"

// Sentinel errors for rendering.
var (
	ErrMalformedTable = errors.New("malformed table")
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrUnknownStyle   = errors.New("unknown highlight style")
)

// Renderer renders sections to HTML.
type Renderer struct {
	diagramServer  string
	highlightStyle string

	basic MarkupConverter // tables and attribute lists
	full  MarkupConverter // basic plus footnotes
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDiagramServer sets the base address of the diagram service.
func WithDiagramServer(base string) Option {
	return func(r *Renderer) {
		if base != "" {
			r.diagramServer = base
		}
	}
}

// WithHighlighting enables chroma syntax highlighting of fenced code in
// text sections using the named style.
func WithHighlighting(style string) Option {
	return func(r *Renderer) {
		r.highlightStyle = style
	}
}

// New creates a Renderer. It fails only for an unknown highlight style.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{diagramServer: DefaultDiagramServer}
	for _, opt := range opts {
		opt(r)
	}
	if err := validateStyle(r.highlightStyle); err != nil {
		return nil, err
	}
	r.basic = newGoldmarkConverter(markupProfile{})
	r.full = newGoldmarkConverter(markupProfile{footnotes: true, highlightStyle: r.highlightStyle})
	return r, nil
}

// DiagramServer returns the configured diagram service address.
func (r *Renderer) DiagramServer() string {
	return r.diagramServer
}

// Render converts raw section text of the given content type to HTML.
func (r *Renderer) Render(ctx context.Context, ct model.ContentType, raw string) (string, error) {
	switch ct {
	case model.ContentUnorderedList:
		return r.basic.ToHTML(ctx, prefixLines(raw, "- "))
	case model.ContentOrderedList:
		return r.basic.ToHTML(ctx, prefixLines(raw, "1. "))
	case model.ContentTable:
		return TableToHTML(raw)
	case model.ContentDiagram:
		return diagram.ImageHTML(r.diagramServer, raw)
	case model.ContentCode:
		html, err := r.basic.ToHTML(ctx, raw)
		if err != nil {
			return "", err
		}
		return "<pre><code>" + html + "</code></pre>", nil
	default:
		return r.full.ToHTML(ctx, raw)
	}
}

// prefixLines puts marker in front of every non-blank line and drops the
// blank ones, so the list stays a single list.
func prefixLines(raw, marker string) string {
	var b strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(marker)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
