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

// LoadDocument reads a document with all of its content. Requirements come
// back in insertion order; sections and checklist questions by position.
func (s *Store) LoadDocument(ctx context.Context, id string) (vorgaben.Document, error) {
	doc := vorgaben.Document{ID: id}
	var from, until sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT d.name, t.name, d.valid_from, d.valid_until
		 FROM documents d JOIN document_types t ON t.id = d.document_type_id
		 WHERE d.id = ?`, id).Scan(&doc.Name, &doc.DocumentType, &from, &until)
	if errors.Is(err, sql.ErrNoRows) {
		return vorgaben.Document{}, fmt.Errorf("%w: %q", vorgaben.ErrDocumentNotFound, id)
	}
	if err != nil {
		return vorgaben.Document{}, err
	}
	if doc.ValidFrom, err = parseDate(from); err != nil {
		return vorgaben.Document{}, fmt.Errorf("document %s valid_from: %w", id, err)
	}
	if doc.ValidUntil, err = parseDate(until); err != nil {
		return vorgaben.Document{}, fmt.Errorf("document %s valid_until: %w", id, err)
	}

	if doc.Introduction, err = s.documentSections(ctx, "introduction_sections", id); err != nil {
		return vorgaben.Document{}, err
	}
	if doc.Scope, err = s.documentSections(ctx, "scope_sections", id); err != nil {
		return vorgaben.Document{}, err
	}
	if doc.Requirements, err = s.requirements(ctx, id); err != nil {
		return vorgaben.Document{}, err
	}
	return doc, nil
}

func (s *Store) documentSections(ctx context.Context, table, documentID string) ([]vorgaben.Section, error) {
	// #nosec G202 -- table is a constant
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.tag, s.text, s.position FROM `+table+` s
		 JOIN content_types c ON c.id = s.content_type_id
		 WHERE s.document_id = ? ORDER BY s.position, s.id`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vorgaben.Section
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		// Renumber so gaps in stored positions never reach the renderer.
		sec.Order = len(out)
		out = append(out, sec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSection(row scanner, prefix ...any) (vorgaben.Section, error) {
	var (
		sec vorgaben.Section
		tag string
	)
	dest := append(prefix, &tag, &sec.Text, &sec.Order)
	if err := row.Scan(dest...); err != nil {
		return sec, err
	}
	ct, ok := model.ParseContentType(tag)
	if !ok {
		ct = model.ContentText
	}
	sec.ContentType = ct
	return sec, nil
}

func (s *Store) requirements(ctx context.Context, documentID string) ([]vorgaben.Requirement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, t.name, r.number, r.title, r.valid_from, r.valid_until
		 FROM requirements r JOIN topics t ON t.id = r.topic_id
		 WHERE r.document_id = ? ORDER BY r.id`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		reqs  []vorgaben.Requirement
		index = map[int64]int{}
	)
	for rows.Next() {
		var (
			id    int64
			r     vorgaben.Requirement
			from  string
			until sql.NullString
		)
		if err = rows.Scan(&id, &r.Topic, &r.Number, &r.Title, &from, &until); err != nil {
			return nil, err
		}
		if r.ValidFrom, err = time.Parse(time.DateOnly, from); err != nil {
			return nil, fmt.Errorf("requirement %d valid_from: %w", id, err)
		}
		if r.ValidUntil, err = parseDate(until); err != nil {
			return nil, fmt.Errorf("requirement %d valid_until: %w", id, err)
		}
		index[id] = len(reqs)
		reqs = append(reqs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}

	if err := s.requirementSections(ctx, "short_text_sections", documentID, func(id int64, sec vorgaben.Section) {
		r := &reqs[index[id]]
		r.ShortText = append(r.ShortText, sec)
	}); err != nil {
		return nil, err
	}
	if err := s.requirementSections(ctx, "long_text_sections", documentID, func(id int64, sec vorgaben.Section) {
		r := &reqs[index[id]]
		r.LongText = append(r.LongText, sec)
	}); err != nil {
		return nil, err
	}
	if err := s.requirementStrings(ctx,
		`SELECT q.requirement_id, q.question FROM checklist_questions q
		 JOIN requirements r ON r.id = q.requirement_id
		 WHERE r.document_id = ? ORDER BY q.requirement_id, q.position, q.id`,
		documentID, func(id int64, v string) {
			r := &reqs[index[id]]
			r.Checklist = append(r.Checklist, v)
		}); err != nil {
		return nil, err
	}
	if err := s.requirementStrings(ctx,
		`SELECT rk.requirement_id, k.name FROM requirement_keywords rk
		 JOIN keywords k ON k.id = rk.keyword_id
		 JOIN requirements r ON r.id = rk.requirement_id
		 WHERE r.document_id = ? ORDER BY rk.requirement_id, k.name`,
		documentID, func(id int64, v string) {
			r := &reqs[index[id]]
			r.Keywords = append(r.Keywords, v)
		}); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *Store) requirementSections(ctx context.Context, table, documentID string, add func(int64, vorgaben.Section)) error {
	// #nosec G202 -- table is a constant
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.requirement_id, c.tag, s.text, s.position FROM `+table+` s
		 JOIN content_types c ON c.id = s.content_type_id
		 JOIN requirements r ON r.id = s.requirement_id
		 WHERE r.document_id = ? ORDER BY s.requirement_id, s.position, s.id`, documentID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		sec, err := scanSection(rows, &id)
		if err != nil {
			return err
		}
		add(id, sec)
	}
	return rows.Err()
}

func (s *Store) requirementStrings(ctx context.Context, query, documentID string, add func(int64, string)) error {
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int64
			v  string
		)
		if err := rows.Scan(&id, &v); err != nil {
			return err
		}
		add(id, v)
	}
	return rows.Err()
}
