package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alnah/go-vorgaben/internal/model"
)

// Context is the parse state: where the next content block is attached.
type Context int

// Parse contexts. The zero value is the initial scope context.
const (
	ContextScope Context = iota
	ContextIntroduction
	ContextRequirementNone
	ContextShortText
	ContextLongText
	ContextKeywords
	ContextChecklist
)

var contextNames = [...]string{
	ContextScope:           "scope",
	ContextIntroduction:    "introduction",
	ContextRequirementNone: "requirement",
	ContextShortText:       "requirement/short-text",
	ContextLongText:        "requirement/long-text",
	ContextKeywords:        "requirement/keywords",
	ContextChecklist:       "requirement/checklist",
}

func (c Context) String() string {
	if int(c) < len(contextNames) {
		return contextNames[c]
	}
	return "unknown"
}

// Sink receives the entities completed by the state machine.
type Sink interface {
	AddIntroduction(model.Section)
	AddScope(model.Section)
	AddRequirement(model.Requirement)
}

// State is the parse state threaded through Step. Step never mutates the
// state it receives; appends go to clipped slices so earlier states stay
// valid.
type State struct {
	Context Context

	open     bool
	req      model.Requirement
	numbered bool
	started  int // block index of the open requirement's vorgabe header
}

// HasOpenRequirement reports whether a requirement is being accumulated.
func (s State) HasOpenRequirement() bool {
	return s.open
}

// Step consumes one classified block and returns the next state together
// with any warnings the block caused.
func Step(s State, b Block, h Header, sink Sink) (State, []model.Warning) {
	switch h.Kind {
	case KindContent:
		return s.content(b, h, sink)

	case KindIntroduction:
		s.Context = ContextIntroduction

	case KindScope:
		s.Context = ContextScope

	case KindRequirement:
		var warnings []model.Warning
		if w := s.finalize(sink); w != nil {
			warnings = append(warnings, *w)
		}
		s = State{
			Context: ContextRequirementNone,
			open:    true,
			req:     model.Requirement{Topic: h.Value},
			started: b.Index,
		}
		return s, warnings

	case KindTitle:
		if !s.open {
			return s, orphan(b, h)
		}
		s.req.Title = firstNonEmpty(h.Value, b.Body)

	case KindNumber:
		if !s.open {
			return s, orphan(b, h)
		}
		if h.HasNumber {
			s.req.Number = h.Number
			s.numbered = true
		}
		s.Context = ContextRequirementNone

	case KindShortText:
		s.Context = ContextShortText

	case KindLongText:
		s.Context = ContextLongText

	case KindKeywords:
		if !s.open {
			return s, orphan(b, h)
		}
		if list := firstNonEmpty(h.Value, b.Body); list != "" {
			s.req.Keywords = addKeywords(s.req.Keywords, list)
		} else {
			s.Context = ContextKeywords
		}

	case KindChecklist:
		if !s.open {
			return s, orphan(b, h)
		}
		if b.Body != "" {
			s.req.Checklist = addQuestions(s.req.Checklist, b.Body)
		} else {
			s.Context = ContextChecklist
		}

	default:
		return s, []model.Warning{{
			Kind:    model.WarnIgnoredHeader,
			Block:   b.Index,
			Message: fmt.Sprintf("unrecognized header %q ignored", b.Header),
		}}
	}
	return s, nil
}

// Finish finalizes the open requirement at end of input.
func Finish(s State, sink Sink) []model.Warning {
	if w := s.finalize(sink); w != nil {
		return []model.Warning{*w}
	}
	return nil
}

// content attaches a content block to the collection selected by the
// current context.
func (s State) content(b Block, h Header, sink Sink) (State, []model.Warning) {
	section := model.Section{ContentType: h.ContentType, Text: b.Body}

	switch s.Context {
	case ContextIntroduction:
		sink.AddIntroduction(section)
	case ContextScope:
		sink.AddScope(section)
	case ContextShortText:
		if !s.open {
			return s, dropped(b, "short text outside of a requirement")
		}
		s.req.ShortText = append(slices.Clip(s.req.ShortText), section)
	case ContextLongText:
		if !s.open {
			return s, dropped(b, "long text outside of a requirement")
		}
		s.req.LongText = append(slices.Clip(s.req.LongText), section)
	case ContextKeywords:
		s.req.Keywords = addKeywords(s.req.Keywords, b.Body)
		s.Context = ContextRequirementNone
	case ContextChecklist:
		s.req.Checklist = addQuestions(s.req.Checklist, b.Body)
		s.Context = ContextRequirementNone
	default:
		return s, dropped(b, "no kurztext/langtext context is active")
	}
	return s, nil
}

// finalize hands the open requirement to the sink.
func (s State) finalize(sink Sink) *model.Warning {
	if !s.open {
		return nil
	}
	sink.AddRequirement(s.req)
	if s.numbered {
		return nil
	}
	return &model.Warning{
		Kind:    model.WarnMissingNumber,
		Block:   s.started,
		Message: fmt.Sprintf("requirement %q has no nummer", s.req.Topic),
	}
}

// addKeywords merges a comma-separated list into a sorted, unique slice.
func addKeywords(keywords []string, list string) []string {
	out := slices.Clone(keywords)
	for _, kw := range strings.Split(list, ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if i, found := slices.BinarySearch(out, kw); !found {
			out = slices.Insert(out, i, kw)
		}
	}
	return out
}

// addQuestions appends one question per non-empty line.
func addQuestions(questions []string, body string) []string {
	out := slices.Clip(questions)
	for _, line := range strings.Split(body, "\n") {
		if q := strings.TrimSpace(line); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orphan(b Block, h Header) []model.Warning {
	return []model.Warning{{
		Kind:    model.WarnOrphanField,
		Block:   b.Index,
		Message: fmt.Sprintf("%s outside of a requirement ignored", h.Kind),
	}}
}

func dropped(b Block, reason string) []model.Warning {
	return []model.Warning{{
		Kind:    model.WarnDroppedContent,
		Block:   b.Index,
		Message: fmt.Sprintf("%q block dropped: %s", b.Header, reason),
	}}
}
