package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	vorgaben "github.com/alnah/go-vorgaben"
	"github.com/alnah/go-vorgaben/internal/model"
)

// txn implements vorgaben.Tx on one database transaction. Reference ids
// are cached for its lifetime.
type txn struct {
	tx           *sql.Tx
	topics       map[string]int64
	contentTypes map[model.ContentType]int64
}

func (t *txn) EnsureDocument(ctx context.Context, rec vorgaben.DocumentRecord) (bool, error) {
	var typeID int64
	err := t.tx.QueryRowContext(ctx, "SELECT id FROM document_types WHERE name = ?", rec.DocumentType).Scan(&typeID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("%w: %q", vorgaben.ErrUnknownDocumentType, rec.DocumentType)
	}
	if err != nil {
		return false, err
	}

	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO documents (id, name, document_type_id, valid_from, valid_until)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		rec.ID, rec.Name, typeID, formatDate(rec.ValidFrom), formatDate(rec.ValidUntil))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

const ownedByDocument = "requirement_id IN (SELECT id FROM requirements WHERE document_id = ?)"

func (t *txn) DeleteIntroduction(ctx context.Context, documentID string) (int, error) {
	return t.delete(ctx, "DELETE FROM introduction_sections WHERE document_id = ?", documentID)
}

func (t *txn) DeleteScope(ctx context.Context, documentID string) (int, error) {
	return t.delete(ctx, "DELETE FROM scope_sections WHERE document_id = ?", documentID)
}

func (t *txn) DeleteShortText(ctx context.Context, documentID string) (int, error) {
	return t.delete(ctx, "DELETE FROM short_text_sections WHERE "+ownedByDocument, documentID)
}

func (t *txn) DeleteLongText(ctx context.Context, documentID string) (int, error) {
	return t.delete(ctx, "DELETE FROM long_text_sections WHERE "+ownedByDocument, documentID)
}

func (t *txn) DeleteChecklist(ctx context.Context, documentID string) (int, error) {
	return t.delete(ctx, "DELETE FROM checklist_questions WHERE "+ownedByDocument, documentID)
}

// DeleteRequirements removes the keyword links first; keywords themselves
// are shared and stay.
func (t *txn) DeleteRequirements(ctx context.Context, documentID string) (int, error) {
	if _, err := t.delete(ctx, "DELETE FROM requirement_keywords WHERE "+ownedByDocument, documentID); err != nil {
		return 0, err
	}
	return t.delete(ctx, "DELETE FROM requirements WHERE document_id = ?", documentID)
}

func (t *txn) delete(ctx context.Context, query, documentID string) (int, error) {
	res, err := t.tx.ExecContext(ctx, query, documentID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (t *txn) CreateIntroduction(ctx context.Context, documentID string, s vorgaben.Section) error {
	return t.insertSection(ctx, "introduction_sections", "document_id", documentID, s)
}

func (t *txn) CreateScope(ctx context.Context, documentID string, s vorgaben.Section) error {
	return t.insertSection(ctx, "scope_sections", "document_id", documentID, s)
}

func (t *txn) CreateShortText(ctx context.Context, requirementID int64, s vorgaben.Section) error {
	return t.insertSection(ctx, "short_text_sections", "requirement_id", requirementID, s)
}

func (t *txn) CreateLongText(ctx context.Context, requirementID int64, s vorgaben.Section) error {
	return t.insertSection(ctx, "long_text_sections", "requirement_id", requirementID, s)
}

func (t *txn) insertSection(ctx context.Context, table, owner string, ownerID any, s vorgaben.Section) error {
	ctID, err := t.contentTypeID(ctx, s.ContentType)
	if err != nil {
		return err
	}
	// #nosec G202 -- table and owner are constants
	_, err = t.tx.ExecContext(ctx,
		"INSERT INTO "+table+" ("+owner+", content_type_id, text, position) VALUES (?, ?, ?, ?)",
		ownerID, ctID, s.Text, s.Order)
	return err
}

func (t *txn) contentTypeID(ctx context.Context, ct model.ContentType) (int64, error) {
	if ct == model.ContentUnspecified {
		ct = model.ContentText
	}
	if id, ok := t.contentTypes[ct]; ok {
		return id, nil
	}
	var id int64
	if err := t.tx.QueryRowContext(ctx, "SELECT id FROM content_types WHERE tag = ?", ct.String()).Scan(&id); err != nil {
		return 0, fmt.Errorf("content type %q: %w", ct, err)
	}
	if t.contentTypes == nil {
		t.contentTypes = map[model.ContentType]int64{}
	}
	t.contentTypes[ct] = id
	return id, nil
}

func (t *txn) topicID(ctx context.Context, name string) (int64, error) {
	if id, ok := t.topics[name]; ok {
		return id, nil
	}
	var id int64
	err := t.tx.QueryRowContext(ctx, "SELECT id FROM topics WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTopic, name)
	}
	if err != nil {
		return 0, err
	}
	if t.topics == nil {
		t.topics = map[string]int64{}
	}
	t.topics[name] = id
	return id, nil
}

func (t *txn) CreateRequirement(ctx context.Context, documentID string, r vorgaben.Requirement) (int64, error) {
	topicID, err := t.topicID(ctx, r.Topic)
	if err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO requirements (document_id, topic_id, number, title, valid_from, valid_until)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		documentID, topicID, r.Number, r.Title, r.ValidFrom.Format(time.DateOnly), formatDate(r.ValidUntil))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (t *txn) CreateChecklistQuestion(ctx context.Context, requirementID int64, question string, order int) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO checklist_questions (requirement_id, question, position) VALUES (?, ?, ?)",
		requirementID, question, order)
	return err
}

func (t *txn) GetOrCreateKeyword(ctx context.Context, name string) (int64, bool, error) {
	res, err := t.tx.ExecContext(ctx, "INSERT INTO keywords (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name)
	if err != nil {
		return 0, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	var id int64
	if err := t.tx.QueryRowContext(ctx, "SELECT id FROM keywords WHERE name = ?", name).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, n == 1, nil
}

func (t *txn) LinkKeyword(ctx context.Context, requirementID, keywordID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO requirement_keywords (requirement_id, keyword_id) VALUES (?, ?)",
		requirementID, keywordID)
	return err
}

func (t *txn) RecordImport(ctx context.Context, rec vorgaben.ImportRecord) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO imports (run_id, document_id, digest, purge, imported_at) VALUES (?, ?, ?, ?, ?)",
		rec.RunID, rec.DocumentID, rec.Digest, rec.Purge, rec.ImportedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (t *txn) Commit() error {
	return t.tx.Commit()
}

// Rollback after Commit is a no-op.
func (t *txn) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
