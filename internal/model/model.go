// Package model defines the document structures shared by the parser,
// the renderer, the import orchestrator and the persistence store.
package model

import (
	"strings"
	"time"
)

// ContentType is the closed set of section content types.
type ContentType int

// Content types. ContentUnspecified renders like ContentText.
const (
	ContentUnspecified ContentType = iota
	ContentText
	ContentOrderedList
	ContentUnorderedList
	ContentTable
	ContentDiagram
	ContentCode
)

// canonicalTags maps content types to the tags used in storage.
var canonicalTags = map[ContentType]string{
	ContentText:          "text",
	ContentOrderedList:   "ordered-list",
	ContentUnorderedList: "unordered-list",
	ContentTable:         "table",
	ContentDiagram:       "diagram",
	ContentCode:          "code",
}

// headerLabels maps normalized header labels (lower case, hyphens replaced
// by spaces) to content types.
var headerLabels = map[string]ContentType{
	"text":             ContentText,
	"liste geordnet":   ContentOrderedList,
	"ordered list":     ContentOrderedList,
	"liste ungeordnet": ContentUnorderedList,
	"unordered list":   ContentUnorderedList,
	"tabelle":          ContentTable,
	"table":            ContentTable,
	"diagramm":         ContentDiagram,
	"diagram":          ContentDiagram,
	"code":             ContentCode,
}

// String returns the canonical tag, or "" for ContentUnspecified.
func (c ContentType) String() string {
	return canonicalTags[c]
}

// ContentTypes returns all specified content types in declaration order.
func ContentTypes() []ContentType {
	return []ContentType{
		ContentText,
		ContentOrderedList,
		ContentUnorderedList,
		ContentTable,
		ContentDiagram,
		ContentCode,
	}
}

// ParseContentType resolves a canonical tag ("ordered-list") or a header
// label ("Liste-Geordnet", "tabelle") to a content type.
func ParseContentType(s string) (ContentType, bool) {
	norm := NormalizeLabel(s)
	if ct, ok := headerLabels[norm]; ok {
		return ct, true
	}
	return ContentUnspecified, false
}

// LabelContentType looks up an already normalized header label.
func LabelContentType(normalized string) (ContentType, bool) {
	ct, ok := headerLabels[normalized]
	return ct, ok
}

// NormalizeLabel lower-cases s, replaces hyphens with spaces and trims it.
func NormalizeLabel(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(s), "-", " "))
}

// Section is one typed, ordered piece of text attached to a document or
// requirement.
type Section struct {
	ContentType ContentType
	Text        string
	Order       int
}

// Requirement is one obligation inside a document.
type Requirement struct {
	Topic      string
	Number     int
	Title      string
	ShortText  []Section
	LongText   []Section
	Keywords   []string // sorted, unique
	Checklist  []string
	ValidFrom  time.Time
	ValidUntil *time.Time
}

// Content is everything the parser recovers from an import file.
type Content struct {
	Introduction []Section
	Scope        []Section
	Requirements []Requirement
}

// Document is a standard with its metadata and content.
type Document struct {
	ID           string
	Name         string
	DocumentType string
	ValidFrom    *time.Time
	ValidUntil   *time.Time
	Content
}

// Record returns the metadata part of the document.
func (d *Document) Record() DocumentRecord {
	return DocumentRecord{
		ID:           d.ID,
		Name:         d.Name,
		DocumentType: d.DocumentType,
		ValidFrom:    d.ValidFrom,
		ValidUntil:   d.ValidUntil,
	}
}

// DocumentRecord is the persisted metadata of a document.
type DocumentRecord struct {
	ID           string
	Name         string
	DocumentType string
	ValidFrom    *time.Time
	ValidUntil   *time.Time
}

// PurgeCounts counts the records owned by one document, per collection.
type PurgeCounts struct {
	Introduction int
	Scope        int
	Requirements int
	ShortText    int
	LongText     int
	Checklist    int
}

// Total sums all collections.
func (p PurgeCounts) Total() int {
	return p.Introduction + p.Scope + p.Requirements + p.ShortText + p.LongText + p.Checklist
}

// ImportRecord describes one successful import run.
type ImportRecord struct {
	RunID      string
	DocumentID string
	Digest     string
	Purge      bool
	ImportedAt time.Time
}
