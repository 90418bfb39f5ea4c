package vorgaben

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/alnah/go-vorgaben/internal/model"
)

var errInjected = errors.New("injected failure")

// memState is the committed content of a memStore.
type memState struct {
	docs      map[string]DocumentRecord
	intro     map[string][]Section
	scope     map[string][]Section
	reqs      map[int64]memRequirement
	short     map[int64][]Section
	long      map[int64][]Section
	checklist map[int64][]string
	keywords  map[string]int64
	links     map[int64][]int64
	imports   []ImportRecord
	nextID    int64
}

type memRequirement struct {
	documentID string
	req        Requirement
}

func newMemState() *memState {
	return &memState{
		docs:      map[string]DocumentRecord{},
		intro:     map[string][]Section{},
		scope:     map[string][]Section{},
		reqs:      map[int64]memRequirement{},
		short:     map[int64][]Section{},
		long:      map[int64][]Section{},
		checklist: map[int64][]string{},
		keywords:  map[string]int64{},
		links:     map[int64][]int64{},
	}
}

func (s *memState) clone() *memState {
	return &memState{
		docs:      maps.Clone(s.docs),
		intro:     cloneSlices(s.intro),
		scope:     cloneSlices(s.scope),
		reqs:      maps.Clone(s.reqs),
		short:     cloneSlices(s.short),
		long:      cloneSlices(s.long),
		checklist: cloneSlices(s.checklist),
		keywords:  maps.Clone(s.keywords),
		links:     cloneSlices(s.links),
		imports:   slices.Clone(s.imports),
		nextID:    s.nextID,
	}
}

func cloneSlices[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

func (s *memState) requirementIDs(documentID string) []int64 {
	var ids []int64
	for id, r := range s.reqs {
		if r.documentID == documentID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (s *memState) counts(documentID string) PurgeCounts {
	c := PurgeCounts{
		Introduction: len(s.intro[documentID]),
		Scope:        len(s.scope[documentID]),
	}
	for _, id := range s.requirementIDs(documentID) {
		c.Requirements++
		c.ShortText += len(s.short[id])
		c.LongText += len(s.long[id])
		c.Checklist += len(s.checklist[id])
	}
	return c
}

// snapshot is a comparable view of one document, independent of IDs.
type snapshot struct {
	Record       DocumentRecord
	Introduction []Section
	Scope        []Section
	Requirements []Requirement
	Keywords     int
}

func (s *memState) snapshot(documentID string) snapshot {
	snap := snapshot{
		Record:       s.docs[documentID],
		Introduction: s.intro[documentID],
		Scope:        s.scope[documentID],
		Keywords:     len(s.keywords),
	}
	names := map[int64]string{}
	for name, id := range s.keywords {
		names[id] = name
	}
	for _, id := range s.requirementIDs(documentID) {
		r := s.reqs[id].req
		r.ShortText = s.short[id]
		r.LongText = s.long[id]
		r.Checklist = s.checklist[id]
		r.Keywords = nil
		for _, kw := range s.links[id] {
			r.Keywords = append(r.Keywords, names[kw])
		}
		slices.Sort(r.Keywords)
		snap.Requirements = append(snap.Requirements, r)
	}
	return snap
}

// memStore is an in-memory Store. Writes go to a copy of the state that
// replaces it on Commit.
type memStore struct {
	mu           sync.Mutex
	state        *memState
	doctypes     map[string]bool
	topics       map[string]bool
	contentTypes map[string]bool

	begins int
	// failOn names a Tx operation that returns errInjected.
	failOn string
}

func newMemStore() *memStore {
	ct := map[string]bool{}
	for _, c := range model.ContentTypes() {
		ct[c.String()] = true
	}
	return &memStore{
		state:        newMemState(),
		doctypes:     map[string]bool{"Standard": true},
		topics:       map[string]bool{"Technik": true, "Organisation": true},
		contentTypes: ct,
	}
}

func (m *memStore) DocumentTypeExists(_ context.Context, name string) (bool, error) {
	return m.doctypes[name], nil
}

func (m *memStore) TopicExists(_ context.Context, name string) (bool, error) {
	return m.topics[name], nil
}

func (m *memStore) ContentTypeExists(_ context.Context, tag string) (bool, error) {
	return m.contentTypes[tag], nil
}

func (m *memStore) DocumentExists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.state.docs[id]
	return ok, nil
}

func (m *memStore) CountContent(_ context.Context, documentID string) (PurgeCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.counts(documentID), nil
}

func (m *memStore) LastImport(_ context.Context, documentID string) (*ImportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.state.imports) - 1; i >= 0; i-- {
		if rec := m.state.imports[i]; rec.DocumentID == documentID {
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *memStore) Begin(context.Context) (Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begins++
	return &memTx{store: m, state: m.state.clone()}, nil
}

func (m *memStore) snapshot(documentID string) snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.snapshot(documentID)
}

type memTx struct {
	store *memStore
	state *memState
	done  bool
}

func (tx *memTx) fail(op string) error {
	if tx.store.failOn == op {
		return errInjected
	}
	return nil
}

func (tx *memTx) EnsureDocument(_ context.Context, rec DocumentRecord) (bool, error) {
	if err := tx.fail("EnsureDocument"); err != nil {
		return false, err
	}
	if _, ok := tx.state.docs[rec.ID]; ok {
		return false, nil
	}
	tx.state.docs[rec.ID] = rec
	return true, nil
}

func (tx *memTx) DeleteIntroduction(_ context.Context, id string) (int, error) {
	n := len(tx.state.intro[id])
	delete(tx.state.intro, id)
	return n, nil
}

func (tx *memTx) DeleteScope(_ context.Context, id string) (int, error) {
	n := len(tx.state.scope[id])
	delete(tx.state.scope, id)
	return n, nil
}

func (tx *memTx) deleteChildren(id string, m map[int64][]Section) int {
	n := 0
	for _, rid := range tx.state.requirementIDs(id) {
		n += len(m[rid])
		delete(m, rid)
	}
	return n
}

func (tx *memTx) DeleteShortText(_ context.Context, id string) (int, error) {
	return tx.deleteChildren(id, tx.state.short), nil
}

func (tx *memTx) DeleteLongText(_ context.Context, id string) (int, error) {
	return tx.deleteChildren(id, tx.state.long), nil
}

func (tx *memTx) DeleteChecklist(_ context.Context, id string) (int, error) {
	n := 0
	for _, rid := range tx.state.requirementIDs(id) {
		n += len(tx.state.checklist[rid])
		delete(tx.state.checklist, rid)
	}
	return n, nil
}

func (tx *memTx) DeleteRequirements(_ context.Context, id string) (int, error) {
	if err := tx.fail("DeleteRequirements"); err != nil {
		return 0, err
	}
	ids := tx.state.requirementIDs(id)
	for _, rid := range ids {
		delete(tx.state.reqs, rid)
		delete(tx.state.links, rid)
	}
	return len(ids), nil
}

func (tx *memTx) CreateIntroduction(_ context.Context, id string, s Section) error {
	tx.state.intro[id] = append(tx.state.intro[id], s)
	return nil
}

func (tx *memTx) CreateScope(_ context.Context, id string, s Section) error {
	tx.state.scope[id] = append(tx.state.scope[id], s)
	return nil
}

func (tx *memTx) CreateRequirement(_ context.Context, id string, r Requirement) (int64, error) {
	if err := tx.fail("CreateRequirement"); err != nil {
		return 0, err
	}
	tx.state.nextID++
	r.ShortText, r.LongText, r.Checklist, r.Keywords = nil, nil, nil, nil
	tx.state.reqs[tx.state.nextID] = memRequirement{documentID: id, req: r}
	return tx.state.nextID, nil
}

func (tx *memTx) CreateShortText(_ context.Context, rid int64, s Section) error {
	tx.state.short[rid] = append(tx.state.short[rid], s)
	return nil
}

func (tx *memTx) CreateLongText(_ context.Context, rid int64, s Section) error {
	tx.state.long[rid] = append(tx.state.long[rid], s)
	return nil
}

func (tx *memTx) CreateChecklistQuestion(_ context.Context, rid int64, q string, _ int) error {
	tx.state.checklist[rid] = append(tx.state.checklist[rid], q)
	return nil
}

func (tx *memTx) GetOrCreateKeyword(_ context.Context, name string) (int64, bool, error) {
	if id, ok := tx.state.keywords[name]; ok {
		return id, false, nil
	}
	tx.state.nextID++
	tx.state.keywords[name] = tx.state.nextID
	return tx.state.nextID, true, nil
}

func (tx *memTx) LinkKeyword(_ context.Context, rid, kw int64) error {
	tx.state.links[rid] = append(tx.state.links[rid], kw)
	return nil
}

func (tx *memTx) RecordImport(_ context.Context, rec ImportRecord) error {
	tx.state.imports = append(tx.state.imports, rec)
	return nil
}

func (tx *memTx) Commit() error {
	if err := tx.fail("Commit"); err != nil {
		return err
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.state = tx.state
	tx.done = true
	return nil
}

func (tx *memTx) Rollback() error {
	tx.done = true
	return nil
}
