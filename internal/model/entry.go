package model

import (
	"time"
)

const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// CatalogEntry is one portfolio item shown in the gallery.
type CatalogEntry struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	ImageHandle string    `db:"image_handle" json:"imageHandle,omitempty"` // Upload gateway deletion token
	VideoURL    string    `db:"video_url" json:"videoUrl"`
	VideoHandle string    `db:"video_handle" json:"videoHandle,omitempty"` // Upload gateway deletion token
	Order       int64     `db:"sort_order" json:"order"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// DisplaysBefore reports whether e sorts ahead of other in the gallery:
// order ascending, then newest first, then id for a strict total order.
func (e *CatalogEntry) DisplaysBefore(other *CatalogEntry) bool {
	if e.Order != other.Order {
		return e.Order < other.Order
	}
	if !e.CreatedAt.Equal(other.CreatedAt) {
		return e.CreatedAt.After(other.CreatedAt)
	}
	return e.ID < other.ID
}
