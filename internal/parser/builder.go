package parser

import "github.com/alnah/go-vorgaben/internal/model"

// Builder accumulates parsed entities and assembles the final content.
type Builder struct {
	introduction []model.Section
	scope        []model.Section
	requirements []model.Requirement
}

// Compile-time interface check.
var _ Sink = (*Builder)(nil)

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddIntroduction appends an introduction section.
func (b *Builder) AddIntroduction(s model.Section) {
	b.introduction = append(b.introduction, s)
}

// AddScope appends a scope section.
func (b *Builder) AddScope(s model.Section) {
	b.scope = append(b.scope, s)
}

// AddRequirement appends a finalized requirement.
func (b *Builder) AddRequirement(r model.Requirement) {
	b.requirements = append(b.requirements, r)
}

// Build returns the content with every section's Order set to its
// zero-based position within its parent collection.
func (b *Builder) Build() model.Content {
	reqs := make([]model.Requirement, len(b.requirements))
	for i, r := range b.requirements {
		r.ShortText = ordered(r.ShortText)
		r.LongText = ordered(r.LongText)
		reqs[i] = r
	}
	return model.Content{
		Introduction: ordered(b.introduction),
		Scope:        ordered(b.scope),
		Requirements: reqs,
	}
}

func ordered(sections []model.Section) []model.Section {
	if len(sections) == 0 {
		return nil
	}
	out := make([]model.Section, len(sections))
	for i, s := range sections {
		s.Order = i
		out[i] = s
	}
	return out
}
