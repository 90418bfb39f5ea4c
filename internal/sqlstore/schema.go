package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alnah/go-vorgaben/internal/model"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS document_types (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS topics (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS content_types (
	id  INTEGER PRIMARY KEY,
	tag TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS keywords (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS documents (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	document_type_id INTEGER NOT NULL REFERENCES document_types(id),
	valid_from       TEXT,
	valid_until      TEXT
);
CREATE TABLE IF NOT EXISTS introduction_sections (
	id              INTEGER PRIMARY KEY,
	document_id     TEXT NOT NULL REFERENCES documents(id),
	content_type_id INTEGER NOT NULL REFERENCES content_types(id),
	text            TEXT NOT NULL,
	position        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS scope_sections (
	id              INTEGER PRIMARY KEY,
	document_id     TEXT NOT NULL REFERENCES documents(id),
	content_type_id INTEGER NOT NULL REFERENCES content_types(id),
	text            TEXT NOT NULL,
	position        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS requirements (
	id          INTEGER PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id),
	topic_id    INTEGER NOT NULL REFERENCES topics(id),
	number      INTEGER NOT NULL,
	title       TEXT NOT NULL,
	valid_from  TEXT NOT NULL,
	valid_until TEXT
);
CREATE INDEX IF NOT EXISTS idx_requirements_document ON requirements(document_id);
CREATE TABLE IF NOT EXISTS requirement_keywords (
	requirement_id INTEGER NOT NULL REFERENCES requirements(id),
	keyword_id     INTEGER NOT NULL REFERENCES keywords(id),
	PRIMARY KEY (requirement_id, keyword_id)
);
CREATE TABLE IF NOT EXISTS short_text_sections (
	id              INTEGER PRIMARY KEY,
	requirement_id  INTEGER NOT NULL REFERENCES requirements(id),
	content_type_id INTEGER NOT NULL REFERENCES content_types(id),
	text            TEXT NOT NULL,
	position        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS long_text_sections (
	id              INTEGER PRIMARY KEY,
	requirement_id  INTEGER NOT NULL REFERENCES requirements(id),
	content_type_id INTEGER NOT NULL REFERENCES content_types(id),
	text            TEXT NOT NULL,
	position        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS checklist_questions (
	id             INTEGER PRIMARY KEY,
	requirement_id INTEGER NOT NULL REFERENCES requirements(id),
	question       TEXT NOT NULL,
	position       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS imports (
	id          INTEGER PRIMARY KEY,
	run_id      TEXT NOT NULL UNIQUE,
	document_id TEXT NOT NULL REFERENCES documents(id),
	digest      TEXT NOT NULL,
	purge       INTEGER NOT NULL,
	imported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_imports_document ON imports(document_id);
`

// migrate creates the schema and seeds the content types. It is a no-op on
// an up-to-date database.
func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("%w: reading schema version: %v", ErrMigrate, err)
	}
	if version == schemaVersion {
		return nil
	}
	if version > schemaVersion {
		return fmt.Errorf("%w: database schema %d is newer than supported %d", ErrMigrate, version, schemaVersion)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigrate, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: creating schema: %v", ErrMigrate, err)
	}
	for _, ct := range model.ContentTypes() {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO content_types (tag) VALUES (?)", ct.String()); err != nil {
			return fmt.Errorf("%w: seeding content types: %v", ErrMigrate, err)
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("%w: setting schema version: %v", ErrMigrate, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrate, err)
	}
	return nil
}
