package parser

import (
	"regexp"
	"strings"
)

// Precompiled regex patterns.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Block delimiter at the start of any line
	blockDelimiter = regexp.MustCompile(`(?m)^>>>`)
)

// Block is one delimited piece of an import file.
type Block struct {
	Index  int    // zero-based position among the non-empty blocks
	Header string // first line, trimmed
	Body   string // remaining lines, trimmed
}

// Tokenize splits text on lines starting with ">>>" and returns the
// non-empty blocks in source order. Text following the delimiter on the
// same line becomes the first line of the block.
func Tokenize(text string) []Block {
	text = normalizeLineEndings(text)
	parts := blockDelimiter.Split(text, -1)

	blocks := make([]Block, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		header, body, _ := strings.Cut(part, "\n")
		blocks = append(blocks, Block{
			Index:  len(blocks),
			Header: strings.TrimSpace(header),
			Body:   strings.TrimSpace(body),
		})
	}
	return blocks
}

// SectionText cleans text the way Tokenize cleans a block body, so a
// section rendered on its own matches the stored one.
func SectionText(text string) string {
	return strings.TrimSpace(normalizeLineEndings(text))
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
