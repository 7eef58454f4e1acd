package service

import (
	"context"
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/frameweavers/showreel/internal/model"
)

// publicRoutes are the fixed pages listed in the sitemap.
var publicRoutes = []struct {
	Path       string
	Priority   string
	ChangeFreq string
}{
	{"/", "1.0", "weekly"},
}

type SitemapService struct {
	catalog Catalog
	baseURL string
}

func NewSitemapService(catalog Catalog, baseURL string) *SitemapService {
	return &SitemapService{
		catalog: catalog,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// GenerateSitemap lists the gallery and one detail page per entry.
func (s *SitemapService) GenerateSitemap(ctx context.Context) ([]byte, error) {
	sitemap := model.Sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  s.staticURLs(),
	}

	// A store outage still yields the fixed pages
	entryURLs, err := s.entryURLs(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to get portfolio URLs for sitemap", "error", err)
	} else {
		sitemap.URLs = append(sitemap.URLs, entryURLs...)
	}

	output, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return []byte(xml.Header + string(output)), nil
}

func (s *SitemapService) staticURLs() []model.SitemapURL {
	today := time.Now().Format("2006-01-02")
	urls := make([]model.SitemapURL, 0, len(publicRoutes))

	for _, route := range publicRoutes {
		urls = append(urls, model.SitemapURL{
			Loc:        s.baseURL + route.Path,
			LastMod:    today,
			ChangeFreq: route.ChangeFreq,
			Priority:   route.Priority,
		})
	}

	return urls
}

func (s *SitemapService) entryURLs(ctx context.Context) ([]model.SitemapURL, error) {
	entries, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	urls := make([]model.SitemapURL, 0, len(entries))
	for _, entry := range entries {
		lastMod := ""
		if !entry.UpdatedAt.IsZero() {
			lastMod = entry.UpdatedAt.Format("2006-01-02")
		}

		urls = append(urls, model.SitemapURL{
			Loc:        s.baseURL + "/portfolio/" + entry.ID,
			LastMod:    lastMod,
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}

	return urls, nil
}
