package client

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
)

// tempPrefix marks sections shown before the server has confirmed them.
const tempPrefix = "tmp-"

// CreateSection creates a section. When the resume's sections are cached, a
// temporary entry is shown at once and replaced by the server's section. A
// failed request puts the previous list back.
func (c *Client) CreateSection(ctx context.Context, resumeID string, in SectionInput) (Section, error) {
	key := SectionsKey(resumeID)
	tempID := tempPrefix + uuid.NewString()
	now := time.Now().UTC()

	var prev []Section
	gen, applied := c.cache.Update(key, func(current any, ok bool) (any, bool) {
		items, isList := current.([]Section)
		if !ok || !isList {
			return nil, false
		}
		prev = items
		return insertSection(items, Section{
			ID:        tempID,
			ResumeID:  resumeID,
			Title:     in.Title,
			Markdown:  in.Markdown,
			CreatedAt: now,
			UpdatedAt: now,
		}, in.Order), true
	})

	var out Section
	if err := c.doJSON(ctx, http.MethodPost, api("/resumes/%s/sections", resumeID), in, &out); err != nil {
		if applied {
			c.cache.Rollback(key, gen, prev)
		}
		return Section{}, err
	}

	_, replaced := c.cache.Update(key, func(current any, ok bool) (any, bool) {
		items, isList := current.([]Section)
		if !ok || !isList {
			return nil, false
		}
		next := slices.Clone(items)
		for i := range next {
			if next[i].ID == tempID {
				next[i] = out
				sortSections(next)
				return next, true
			}
		}
		return nil, false
	})
	if !replaced {
		// The list was replaced while the request ran and may predate it.
		c.cache.Invalidate(key)
	}
	return out, nil
}

// ReorderSections applies a new order to the cached list immediately and
// restores the previous list if the server rejects it.
func (c *Client) ReorderSections(ctx context.Context, resumeID string, sectionIDs []string) error {
	key := SectionsKey(resumeID)
	var prev []Section
	gen, applied := c.cache.Update(key, func(current any, ok bool) (any, bool) {
		items, isList := current.([]Section)
		if !ok || !isList {
			return nil, false
		}
		prev = items
		return reorderSections(items, sectionIDs), true
	})

	body := struct {
		SectionIDs []string `json:"sectionIds"`
	}{SectionIDs: sectionIDs}
	if err := c.doJSON(ctx, http.MethodPatch, api("/resumes/%s/sections/reorder", resumeID), body, nil); err != nil {
		if applied {
			c.cache.Rollback(key, gen, prev)
		}
		return err
	}
	if !applied {
		// Nothing was cached up front; a list loaded meanwhile may predate the reorder.
		c.cache.Invalidate(key)
		return nil
	}
	c.cache.InvalidateUnless(key, gen)
	return nil
}

// upsertSection replaces or adds s in the cached list of its resume.
func (c *Client) upsertSection(resumeID string, s Section) {
	c.cache.Update(SectionsKey(resumeID), func(current any, ok bool) (any, bool) {
		items, isList := current.([]Section)
		if !ok || !isList {
			return nil, false
		}
		next := slices.Clone(items)
		idx := slices.IndexFunc(next, func(item Section) bool { return item.ID == s.ID })
		if idx < 0 {
			next = append(next, s)
		} else {
			next[idx] = s
		}
		sortSections(next)
		return next, true
	})
}

// insertSection mirrors the server: an explicit order shifts the sections at
// or after it down by one, otherwise the section goes last.
func insertSection(items []Section, s Section, order *int) []Section {
	next := make([]Section, 0, len(items)+1)
	if order != nil && *order > 0 {
		s.Order = *order
		for _, item := range items {
			if item.Order >= s.Order {
				item.Order++
			}
			next = append(next, item)
		}
	} else {
		s.Order = 1
		for _, item := range items {
			if item.Order >= s.Order {
				s.Order = item.Order + 1
			}
			next = append(next, item)
		}
	}
	next = append(next, s)
	sortSections(next)
	return next
}

// reorderSections numbers the listed ids 1..n in the given order. Sections
// missing from ids keep their order.
func reorderSections(items []Section, ids []string) []Section {
	position := make(map[string]int, len(ids))
	for i, id := range ids {
		position[id] = i + 1
	}
	next := slices.Clone(items)
	for i := range next {
		if order, ok := position[next[i].ID]; ok {
			next[i].Order = order
		}
	}
	sortSections(next)
	return next
}
