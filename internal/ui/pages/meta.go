package pages

import (
	"context"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
	"github.com/frameweavers/showreel/internal/ctxkeys"
	"github.com/frameweavers/showreel/internal/gallery"
)

// Meta is the per-page head content. An empty Canonical falls back to the
// request path.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	BodyClass   string
}

func pageTitle(ctx context.Context, meta Meta) string {
	name := ctxkeys.Config(ctx).AppName
	if meta.Title == "" || meta.Title == name {
		return name
	}
	return meta.Title + " | " + name
}

func pageDescription(ctx context.Context, meta Meta) string {
	if meta.Description != "" {
		return meta.Description
	}
	return ctxkeys.Config(ctx).AppTagline
}

func canonicalURL(ctx context.Context, meta Meta) string {
	base := ctxkeys.Config(ctx).AppURL
	path := meta.Canonical
	if path == "" {
		path = ctxkeys.URLPath(ctx)
	}
	if base == "" || path == "" {
		return ""
	}
	return base + path
}

func bodyClass(meta Meta) string {
	return twmerge.Merge("site", meta.BodyClass)
}

func filterClass(c gallery.FilterControl) string {
	if c.Active {
		return twmerge.Merge("filter-btn", "active")
	}
	return "filter-btn"
}

// mediaSrc applies the same scheme check templ uses for href values, so a
// stored javascript: URL never reaches a src attribute.
func mediaSrc(url string) string {
	return string(templ.URL(url))
}

func portfolioMeta(view *gallery.View) Meta {
	if !view.Lightbox.IsOpen() {
		return Meta{}
	}
	entry := view.Lightbox.Entry()
	return Meta{
		Title:       entry.Title,
		Description: entry.Description,
		Canonical:   "/portfolio/" + entry.ID,
		BodyClass:   "overflow-hidden",
	}
}
