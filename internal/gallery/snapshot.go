// Package gallery turns a catalog listing into what the portfolio page
// shows: filter controls, cards, and the lightbox player.
package gallery

import (
	"strings"

	"github.com/frameweavers/showreel/internal/model"
)

// Snapshot is one immutable read of the catalog. Everything rendered from
// it refers to entries by id, so a later listing cannot shift what a card
// opens.
type Snapshot struct {
	entries []*model.CatalogEntry
	byID    map[string]*model.CatalogEntry
}

func NewSnapshot(entries []*model.CatalogEntry) *Snapshot {
	s := &Snapshot{
		entries: entries,
		byID:    make(map[string]*model.CatalogEntry, len(entries)),
	}
	for _, e := range entries {
		s.byID[e.ID] = e
	}
	return s
}

func (s *Snapshot) Entries() []*model.CatalogEntry {
	return s.entries
}

func (s *Snapshot) Len() int {
	return len(s.entries)
}

func (s *Snapshot) ByID(id string) (*model.CatalogEntry, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Categories returns the distinct category tags in display order.
func (s *Snapshot) Categories() []string {
	seen := map[string]bool{}
	var categories []string
	for _, e := range s.entries {
		tag := CategoryTag(e.Category)
		if tag == "" || tag == FilterAll || seen[tag] {
			continue
		}
		seen[tag] = true
		categories = append(categories, tag)
	}
	return categories
}

// CategoryTag normalizes a free-form category for matching.
func CategoryTag(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
