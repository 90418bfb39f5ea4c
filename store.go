package vorgaben

import "context"

// Catalog answers read-only questions about reference data and stored
// documents. Preview only ever talks to a Catalog.
type Catalog interface {
	DocumentTypeExists(ctx context.Context, name string) (bool, error)
	TopicExists(ctx context.Context, name string) (bool, error)
	ContentTypeExists(ctx context.Context, tag string) (bool, error)
	DocumentExists(ctx context.Context, id string) (bool, error)

	// CountContent counts the records a purge of the document would delete.
	CountContent(ctx context.Context, documentID string) (PurgeCounts, error)

	// LastImport returns the most recent import record of the document, or
	// nil when there is none.
	LastImport(ctx context.Context, documentID string) (*ImportRecord, error)
}

// Store is the persistence collaborator of the Importer.
type Store interface {
	Catalog

	// Begin starts the unit of work that holds every write of one import.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one atomic unit of writes. Nothing is visible to readers before
// Commit; Rollback discards everything.
type Tx interface {
	// EnsureDocument creates the document unless it exists. An existing
	// document keeps its stored metadata.
	EnsureDocument(ctx context.Context, rec DocumentRecord) (created bool, err error)

	// Delete-by-parent operations return the number of deleted records.
	// DeleteRequirements also removes keyword links of those requirements.
	DeleteIntroduction(ctx context.Context, documentID string) (int, error)
	DeleteScope(ctx context.Context, documentID string) (int, error)
	DeleteShortText(ctx context.Context, documentID string) (int, error)
	DeleteLongText(ctx context.Context, documentID string) (int, error)
	DeleteChecklist(ctx context.Context, documentID string) (int, error)
	DeleteRequirements(ctx context.Context, documentID string) (int, error)

	CreateIntroduction(ctx context.Context, documentID string, s Section) error
	CreateScope(ctx context.Context, documentID string, s Section) error
	CreateRequirement(ctx context.Context, documentID string, r Requirement) (id int64, err error)
	CreateShortText(ctx context.Context, requirementID int64, s Section) error
	CreateLongText(ctx context.Context, requirementID int64, s Section) error
	CreateChecklistQuestion(ctx context.Context, requirementID int64, question string, order int) error

	GetOrCreateKeyword(ctx context.Context, name string) (id int64, created bool, err error)
	LinkKeyword(ctx context.Context, requirementID, keywordID int64) error

	RecordImport(ctx context.Context, rec ImportRecord) error

	Commit() error
	Rollback() error
}
