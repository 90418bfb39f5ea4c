package render

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkupConverter converts light markup to an HTML fragment.
type MarkupConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
// A goldmark.Markdown is safe for concurrent use.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// Compile-time interface check.
var _ MarkupConverter = (*GoldmarkConverter)(nil)

// markupProfile selects the extensions of a converter.
type markupProfile struct {
	footnotes      bool
	highlightStyle string // chroma style name, empty disables highlighting
}

// newGoldmarkConverter creates a converter with tables and attribute lists,
// plus footnotes and syntax highlighting when the profile asks for them.
func newGoldmarkConverter(p markupProfile) *GoldmarkConverter {
	extensions := []goldmark.Extender{
		extension.Table,
	}
	if p.footnotes {
		extensions = append(extensions, extension.Footnote)
	}
	if p.highlightStyle != "" {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(p.highlightStyle),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true), // CSS classes for external stylesheet control
			),
		))
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithAttribute(), // {#id .class} attribute lists
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),  // Self-closing tags
			html.WithUnsafe(), // Authors may embed raw HTML, as in table cells
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// Goldmark has no context support, so conversion runs in a goroutine and
// the caller stops waiting on cancellation.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// validateStyle checks that name is a registered chroma style.
func validateStyle(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := styles.Registry[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return nil
}

// StyleNames lists the available highlighting styles.
func StyleNames() []string {
	return styles.Names()
}
