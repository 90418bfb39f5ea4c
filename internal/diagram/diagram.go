// Package diagram encodes diagram sources into image references for an
// external rendering service addressed as <base>/<kind>/svg/<token>, where
// token is the URL-safe base64 encoding of the zlib-compressed source.
package diagram

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultOptions is used when a diagram has no options line.
const DefaultOptions = `width="100%"`

// Sentinel errors for diagram operations.
var (
	ErrEmptyDiagram = errors.New("diagram has no kind line")
	ErrInvalidToken = errors.New("invalid diagram token")
)

// Spec is a diagram section split into its parts.
type Spec struct {
	Kind    string // first line, e.g. "plantuml"
	Options string // image attributes
	Source  string // diagram source payload
}

// Parse splits raw section text into kind, options and source. A second
// line starting with "option" (any case) supplies the attributes after its
// first colon.
func Parse(raw string) (Spec, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 || lines[0] == "" {
		return Spec{}, ErrEmptyDiagram
	}

	spec := Spec{Kind: lines[0], Options: DefaultOptions}
	lines = lines[1:]

	if len(lines) > 0 && hasOptionPrefix(lines[0]) {
		_, opts, _ := strings.Cut(lines[0], ":")
		spec.Options = opts
		lines = lines[1:]
	}

	spec.Source = strings.Join(lines, "\n")
	return spec, nil
}

func hasOptionPrefix(line string) bool {
	const prefix = "option"
	return len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix)
}

// Encode compresses source with zlib at maximum compression and returns
// the URL-safe base64 encoding (padded) of the result.
func Encode(source string) (string, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := zw.Write([]byte(source)); err != nil {
		return "", fmt.Errorf("compressing diagram: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compressing diagram: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses Encode.
func Decode(token string) (string, error) {
	compressed, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	defer zr.Close()

	source, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return string(source), nil
}

// URL builds the service address for an encoded diagram.
func URL(base, kind, token string) string {
	return strings.TrimRight(base, "/") + "/" + kind + "/svg/" + token
}

// ImageHTML renders a diagram section as a paragraph holding an image
// served by base.
func ImageHTML(base, raw string) (string, error) {
	spec, err := Parse(raw)
	if err != nil {
		return "", err
	}
	token, err := Encode(spec.Source)
	if err != nil {
		return "", err
	}
	return `<p><img ` + spec.Options + ` src="` + URL(base, spec.Kind, token) + `"></p>`, nil
}
