package model

import "sort"

// History is the in-memory set of posting identifiers already processed.
// It only grows; Changed reports whether Add inserted anything since creation.
type History struct {
	ids     map[string]struct{}
	changed bool
}

// NewHistory returns a history seeded with ids. Seeding does not count as a change.
func NewHistory(ids ...string) *History {
	h := &History{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			h.ids[id] = struct{}{}
		}
	}
	return h
}

// Has reports whether id was already seen.
func (h *History) Has(id string) bool {
	_, ok := h.ids[id]
	return ok
}

// Add records id and reports whether it was new.
func (h *History) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := h.ids[id]; ok {
		return false
	}
	h.ids[id] = struct{}{}
	h.changed = true
	return true
}

// Changed reports whether at least one new id was added.
func (h *History) Changed() bool { return h.changed }

// Len returns the number of ids in the set.
func (h *History) Len() int { return len(h.ids) }

// IDs returns the ids in sorted order.
func (h *History) IDs() []string {
	out := make([]string, 0, len(h.ids))
	for id := range h.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
