package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frameweavers/showreel/internal/service"
)

type SEOHandler struct {
	sitemapService *service.SitemapService
	baseURL        string
}

func NewSEOHandler(sitemapService *service.SitemapService, baseURL string) *SEOHandler {
	return &SEOHandler{
		sitemapService: sitemapService,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
	}
}

// Robots allows everything except the JSON API
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /api/\nSitemap: %s/sitemap.xml\n", h.baseURL)
}

// Sitemap generates and serves the sitemap.xml dynamically
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	sitemap, err := h.sitemapService.GenerateSitemap(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to generate sitemap", "error", err)
		http.Error(w, "Failed to generate sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(sitemap)
}
