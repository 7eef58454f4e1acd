package gallery

import (
	"github.com/frameweavers/showreel/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const FilterAll = "all"

type FilterControl struct {
	Tag    string
	Label  string
	Active bool
}

// FilterBar is the set of mutually exclusive category filters. Exactly one
// control is active at any time.
type FilterBar struct {
	controls []FilterControl
	active   int
}

func NewFilterBar(categories []string) *FilterBar {
	title := cases.Title(language.English)

	controls := []FilterControl{{Tag: FilterAll, Label: "All", Active: true}}
	for _, c := range categories {
		controls = append(controls, FilterControl{Tag: c, Label: title.String(c)})
	}
	return &FilterBar{controls: controls}
}

// Select activates the control for tag. Unknown tags select all.
func (b *FilterBar) Select(tag string) {
	tag = CategoryTag(tag)
	next := 0
	for i, c := range b.controls {
		if c.Tag == tag {
			next = i
			break
		}
	}

	b.controls[b.active].Active = false
	b.controls[next].Active = true
	b.active = next
}

func (b *FilterBar) Active() string {
	return b.controls[b.active].Tag
}

func (b *FilterBar) Controls() []FilterControl {
	return b.controls
}

// Visible reports whether a card for entry shows under the active filter.
func (b *FilterBar) Visible(entry *model.CatalogEntry) bool {
	active := b.Active()
	return active == FilterAll || CategoryTag(entry.Category) == active
}
