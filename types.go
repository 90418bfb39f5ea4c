package vorgaben

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-vorgaben/internal/model"
)

// Aliases so callers of this package need not import internal/model.
type (
	ContentType    = model.ContentType
	Section        = model.Section
	Requirement    = model.Requirement
	Content        = model.Content
	Document       = model.Document
	DocumentRecord = model.DocumentRecord
	Warning        = model.Warning
	WarningKind    = model.WarningKind
	PurgeCounts    = model.PurgeCounts
	ImportRecord   = model.ImportRecord
)

// Field limits for document metadata.
const (
	MaxDocumentIDLength   = 64
	MaxDocumentNameLength = 256
)

// Metadata identifies the document an import file belongs to.
type Metadata struct {
	DocumentID   string
	Name         string
	DocumentType string
	ValidFrom    *time.Time
	ValidUntil   *time.Time
}

// Validate checks required fields and the validity window.
func (m Metadata) Validate() error {
	switch {
	case m.DocumentID == "":
		return fmt.Errorf("%w: document id is required", ErrInvalidMetadata)
	case m.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidMetadata)
	case m.DocumentType == "":
		return fmt.Errorf("%w: document type is required", ErrInvalidMetadata)
	}
	if utf8.RuneCountInString(m.DocumentID) > MaxDocumentIDLength {
		return fmt.Errorf("%w: document id exceeds %d characters", ErrInvalidMetadata, MaxDocumentIDLength)
	}
	if utf8.RuneCountInString(m.Name) > MaxDocumentNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidMetadata, MaxDocumentNameLength)
	}
	if m.ValidFrom != nil && m.ValidUntil != nil && m.ValidUntil.Before(*m.ValidFrom) {
		return fmt.Errorf("%w: valid until %s is before valid from %s",
			ErrInvalidMetadata, m.ValidUntil.Format(time.DateOnly), m.ValidFrom.Format(time.DateOnly))
	}
	return nil
}

func (m Metadata) record() DocumentRecord {
	return DocumentRecord{
		ID:           m.DocumentID,
		Name:         m.Name,
		DocumentType: m.DocumentType,
		ValidFrom:    m.ValidFrom,
		ValidUntil:   m.ValidUntil,
	}
}

// ImportOptions controls Execute.
type ImportOptions struct {
	// Purge deletes the document's existing content before inserting.
	Purge bool
	// Strict turns dropped-content warnings into ErrDroppedContent.
	Strict bool
}

// ImportPlan is what an import would do. Preview returns it without
// touching the store.
type ImportPlan struct {
	RunID  string
	Digest string

	// Document holds the metadata and the content that would be stored,
	// with unresolved requirements already removed.
	Document Document

	// DocumentExists reports whether the store already knows the document.
	DocumentExists bool

	// Dropped lists requirements whose topic does not resolve.
	Dropped []Requirement

	// WouldPurge counts what a purge would delete right now.
	WouldPurge PurgeCounts

	Warnings []Warning
	Blocks   int
}

// ImportResult reports what Execute did.
type ImportResult struct {
	ImportPlan

	// Skipped is set when a purge import found the same source already
	// imported by the latest purge run and changed nothing.
	Skipped bool

	DocumentCreated bool
	Purged          PurgeCounts
	Created         PurgeCounts
	KeywordsCreated int
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithClock sets the time source used for requirement validity starts and
// import records.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

// WithRunID sets the generator for import run identifiers.
func WithRunID(gen func() string) Option {
	return func(i *Importer) {
		if gen != nil {
			i.newRunID = gen
		}
	}
}
