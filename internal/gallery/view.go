package gallery

import (
	"net/url"

	"github.com/frameweavers/showreel/internal/model"
)

type Card struct {
	Entry   *model.CatalogEntry
	Tag     string
	Href    string // Detail page that opens this entry in the lightbox
	Visible bool
}

// View is everything the portfolio page renders for one request.
type View struct {
	Filters  []FilterControl
	Active   string
	Cards    []Card
	Lightbox *Lightbox
	CloseURL string
}

// Empty reports whether the catalog has no entries at all.
func (v *View) Empty() bool {
	return len(v.Cards) == 0
}

// NoneVisible reports whether the active filter hides every card.
func (v *View) NoneVisible() bool {
	for _, c := range v.Cards {
		if c.Visible {
			return false
		}
	}
	return true
}

// FilterURL is the gallery link that activates tag.
func FilterURL(tag string) string {
	if tag == "" || tag == FilterAll {
		return "/"
	}
	return "/?" + url.Values{"category": {tag}}.Encode()
}

// NewView builds the page for snapshot with category selected and, when
// openID names an entry, the lightbox open on it.
func NewView(snapshot *Snapshot, classifier *Classifier, category, openID string) *View {
	bar := NewFilterBar(snapshot.Categories())
	bar.Select(category)
	active := bar.Active()

	query := ""
	if active != FilterAll {
		query = "?" + url.Values{"category": {active}}.Encode()
	}

	cards := make([]Card, 0, snapshot.Len())
	for _, e := range snapshot.Entries() {
		cards = append(cards, Card{
			Entry:   e,
			Tag:     CategoryTag(e.Category),
			Href:    "/portfolio/" + url.PathEscape(e.ID) + query,
			Visible: bar.Visible(e),
		})
	}

	lightbox := NewLightbox(classifier)
	if entry, ok := snapshot.ByID(openID); ok {
		lightbox.Open(entry)
	}

	return &View{
		Filters:  bar.Controls(),
		Active:   active,
		Cards:    cards,
		Lightbox: lightbox,
		CloseURL: FilterURL(active),
	}
}
