// Package sqlstore persists standards in a SQLite database using the pure
// Go modernc.org/sqlite driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	vorgaben "github.com/alnah/go-vorgaben"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Sentinel errors for store operations.
var (
	ErrOpen         = errors.New("cannot open database")
	ErrMigrate      = errors.New("database migration failed")
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrUnknownTopic = errors.New("topic does not exist")
)

// Compile-time interface checks
var (
	_ vorgaben.Store = (*Store)(nil)
	_ vorgaben.Tx    = (*txn)(nil)
)

// Store is a SQLite-backed vorgaben.Store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and brings its
// schema up to date. Foreign keys are enforced.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOpen)
	}
	db, err := sql.Open(DriverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddDocumentType registers a document type. Returns false when it already
// existed.
func (s *Store) AddDocumentType(ctx context.Context, name, description string) (bool, error) {
	return s.addNamed(ctx, "document_types", name, description)
}

// AddTopic registers a topic. Returns false when it already existed.
func (s *Store) AddTopic(ctx context.Context, name, description string) (bool, error) {
	return s.addNamed(ctx, "topics", name, description)
}

func (s *Store) addNamed(ctx context.Context, table, name, description string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}
	// #nosec G201 -- table is one of two constants
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO "+table+" (name, description) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		name, description)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DocumentTypeExists implements vorgaben.Catalog.
func (s *Store) DocumentTypeExists(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS(SELECT 1 FROM document_types WHERE name = ?)", name)
}

// TopicExists implements vorgaben.Catalog.
func (s *Store) TopicExists(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS(SELECT 1 FROM topics WHERE name = ?)", name)
}

// ContentTypeExists implements vorgaben.Catalog.
func (s *Store) ContentTypeExists(ctx context.Context, tag string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS(SELECT 1 FROM content_types WHERE tag = ?)", tag)
}

// DocumentExists implements vorgaben.Catalog.
func (s *Store) DocumentExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS(SELECT 1 FROM documents WHERE id = ?)", id)
}

func (s *Store) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// CountContent implements vorgaben.Catalog.
func (s *Store) CountContent(ctx context.Context, documentID string) (vorgaben.PurgeCounts, error) {
	const q = `SELECT
	(SELECT COUNT(*) FROM introduction_sections WHERE document_id = ?1),
	(SELECT COUNT(*) FROM scope_sections WHERE document_id = ?1),
	(SELECT COUNT(*) FROM requirements WHERE document_id = ?1),
	(SELECT COUNT(*) FROM short_text_sections WHERE requirement_id IN (SELECT id FROM requirements WHERE document_id = ?1)),
	(SELECT COUNT(*) FROM long_text_sections WHERE requirement_id IN (SELECT id FROM requirements WHERE document_id = ?1)),
	(SELECT COUNT(*) FROM checklist_questions WHERE requirement_id IN (SELECT id FROM requirements WHERE document_id = ?1))`

	var c vorgaben.PurgeCounts
	err := s.db.QueryRowContext(ctx, q, documentID).Scan(
		&c.Introduction, &c.Scope, &c.Requirements, &c.ShortText, &c.LongText, &c.Checklist)
	return c, err
}

// LastImport implements vorgaben.Catalog.
func (s *Store) LastImport(ctx context.Context, documentID string) (*vorgaben.ImportRecord, error) {
	var (
		rec      = vorgaben.ImportRecord{DocumentID: documentID}
		imported string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT run_id, digest, purge, imported_at FROM imports WHERE document_id = ? ORDER BY id DESC LIMIT 1",
		documentID).Scan(&rec.RunID, &rec.Digest, &rec.Purge, &imported)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.ImportedAt, err = time.Parse(time.RFC3339Nano, imported); err != nil {
		return nil, fmt.Errorf("import %s: bad timestamp %q: %w", rec.RunID, imported, err)
	}
	return &rec, nil
}

// Begin implements vorgaben.Store.
func (s *Store) Begin(ctx context.Context) (vorgaben.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txn{tx: tx}, nil
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.DateOnly)
}

func parseDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
