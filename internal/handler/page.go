package handler

import (
	"log/slog"
	"net/http"

	"github.com/frameweavers/showreel/internal/gallery"
	"github.com/frameweavers/showreel/internal/service"
	"github.com/frameweavers/showreel/internal/ui"
	"github.com/frameweavers/showreel/internal/ui/pages"
)

type PageHandler struct {
	catalog    service.Catalog
	classifier *gallery.Classifier
}

func NewPageHandler(catalog service.Catalog, classifier *gallery.Classifier) *PageHandler {
	return &PageHandler{
		catalog:    catalog,
		classifier: classifier,
	}
}

// Home renders the gallery; ?category= selects the active filter.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "")
}

// Detail renders the gallery with the lightbox open on one entry.
func (h *PageHandler) Detail(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, r.PathValue("id"))
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, openID string) {
	entries, err := h.catalog.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load portfolio page", "error", err)
		ui.RenderStatus(w, r, http.StatusServiceUnavailable, pages.PortfolioUnavailable())
		return
	}

	snapshot := gallery.NewSnapshot(entries)
	if openID != "" {
		if _, ok := snapshot.ByID(openID); !ok {
			h.NotFound(w, r)
			return
		}
	}

	view := gallery.NewView(snapshot, h.classifier, r.URL.Query().Get("category"), openID)
	ui.Render(w, r, pages.Portfolio(view))
}
