package gallery

import (
	"github.com/frameweavers/showreel/internal/model"
)

// Lightbox holds the open/closed state of the video overlay. Opening
// replaces any mounted player; closing unmounts it and unlocks scrolling.
type Lightbox struct {
	classifier   *Classifier
	entry        *model.CatalogEntry
	player       *Player
	open         bool
	scrollLocked bool
}

func NewLightbox(classifier *Classifier) *Lightbox {
	return &Lightbox{classifier: classifier}
}

func (l *Lightbox) Open(entry *model.CatalogEntry) {
	l.unmount()

	player := l.classifier.Classify(entry.VideoURL)
	if player.Kind != PlayerNone {
		l.player = &player
	}
	l.entry = entry
	l.open = true
	l.scrollLocked = true
}

func (l *Lightbox) Close() {
	if !l.open {
		return
	}
	l.unmount()
	l.entry = nil
	l.open = false
	l.scrollLocked = false
}

func (l *Lightbox) IsOpen() bool {
	return l.open
}

func (l *Lightbox) ScrollLocked() bool {
	return l.scrollLocked
}

// Player is the mounted player, or nil.
func (l *Lightbox) Player() *Player {
	return l.player
}

func (l *Lightbox) Entry() *model.CatalogEntry {
	return l.entry
}

func (l *Lightbox) unmount() {
	l.player = nil
}
