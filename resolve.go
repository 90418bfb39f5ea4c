package vorgaben

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-vorgaben/internal/model"
)

// resolver checks parsed content against the catalog. Lookups are cached
// for the duration of one import.
type resolver struct {
	catalog      Catalog
	topics       map[string]bool
	contentTypes map[model.ContentType]bool

	dropped  []Requirement
	warnings []Warning
}

// resolve returns content whose requirements all reference existing topics
// and whose sections all carry known content types. validFrom is stamped on
// every kept requirement.
func (r *resolver) resolve(ctx context.Context, c Content, validFrom time.Time) (Content, error) {
	var err error
	out := Content{}

	if out.Introduction, err = r.sections(ctx, c.Introduction, "introduction"); err != nil {
		return Content{}, err
	}
	if out.Scope, err = r.sections(ctx, c.Scope, "scope"); err != nil {
		return Content{}, err
	}

	for _, req := range c.Requirements {
		ok, err := r.topicExists(ctx, req.Topic)
		if err != nil {
			return Content{}, err
		}
		if !ok {
			r.dropped = append(r.dropped, req)
			r.warnings = append(r.warnings, Warning{
				Kind:    model.WarnUnresolvedTopic,
				Block:   model.NoBlock,
				Message: fmt.Sprintf("requirement %d %q skipped: topic %q does not exist", req.Number, req.Title, req.Topic),
			})
			continue
		}

		where := fmt.Sprintf("requirement %s %d", req.Topic, req.Number)
		if req.ShortText, err = r.sections(ctx, req.ShortText, where+" short text"); err != nil {
			return Content{}, err
		}
		if req.LongText, err = r.sections(ctx, req.LongText, where+" long text"); err != nil {
			return Content{}, err
		}
		req.ValidFrom = validFrom
		out.Requirements = append(out.Requirements, req)
	}
	return out, nil
}

// sections replaces content types unknown to the catalog with text.
func (r *resolver) sections(ctx context.Context, in []Section, where string) ([]Section, error) {
	if len(in) == 0 {
		return in, nil
	}
	out := make([]Section, len(in))
	for i, s := range in {
		if s.ContentType == model.ContentUnspecified {
			s.ContentType = model.ContentText
		}
		ok, err := r.contentTypeExists(ctx, s.ContentType)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.warnings = append(r.warnings, Warning{
				Kind:    model.WarnUnknownContentType,
				Block:   model.NoBlock,
				Message: fmt.Sprintf("%s section %d: content type %q not in store, using text", where, i, s.ContentType),
			})
			s.ContentType = model.ContentText
		}
		out[i] = s
	}
	return out, nil
}

func (r *resolver) topicExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	if ok, cached := r.topics[name]; cached {
		return ok, nil
	}
	ok, err := r.catalog.TopicExists(ctx, name)
	if err != nil {
		return false, storeError("looking up topic", err)
	}
	r.topics[name] = ok
	return ok, nil
}

func (r *resolver) contentTypeExists(ctx context.Context, ct model.ContentType) (bool, error) {
	if ok, cached := r.contentTypes[ct]; cached {
		return ok, nil
	}
	ok, err := r.catalog.ContentTypeExists(ctx, ct.String())
	if err != nil {
		return false, storeError("looking up content type", err)
	}
	r.contentTypes[ct] = ok
	return ok, nil
}
