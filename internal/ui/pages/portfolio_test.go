package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/frameweavers/showreel/internal/config"
	"github.com/frameweavers/showreel/internal/ctxkeys"
	"github.com/frameweavers/showreel/internal/gallery"
	"github.com/frameweavers/showreel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	return renderAt(t, "", c)
}

func renderAt(t *testing.T, path string, c templ.Component) *goquery.Document {
	t.Helper()
	ctx := ctxkeys.WithConfig(context.Background(), &config.Config{
		AppName:    "Frame Weavers",
		AppTagline: "Cinematic films",
		AppURL:     "https://frameweavers.test",
	})
	ctx = templ.WithNonce(ctx, "test-nonce")
	if path != "" {
		ctx = ctxkeys.WithURLPath(ctx, path)
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func entries() []*model.CatalogEntry {
	return []*model.CatalogEntry{
		{ID: "kerala", Title: "Royal Kerala Wedding", Category: "weddings",
			Description: "Luxury wedding film", ImageURL: "/assets/kerala.png",
			VideoURL: "https://www.youtube.com/embed/GtvZtDWBPvc"},
		{ID: "autoshow", Title: "Autoshow&DJ", Category: "automotive",
			Description: "Autoshow and DJ event highlight", VideoURL: "videos/Autoshow&Dj.mp4"},
	}
}

func TestPortfolio_GridAndFilters(t *testing.T) {
	view := gallery.NewView(gallery.NewSnapshot(entries()), gallery.NewClassifier(), "", "")
	doc := render(t, Portfolio(view))

	filters := doc.Find("nav.filters a.filter-btn")
	assert.Equal(t, 3, filters.Length())
	assert.Equal(t, 1, doc.Find("a.filter-btn.active").Length())
	assert.Equal(t, "all", doc.Find("a.filter-btn.active").AttrOr("data-filter", ""))
	assert.Equal(t, "/?category=weddings", filters.Eq(1).AttrOr("href", ""))

	cards := doc.Find("article.portfolio-item")
	require.Equal(t, 2, cards.Length())
	assert.Equal(t, "/portfolio/kerala", cards.Eq(0).Find("a").AttrOr("href", ""))
	assert.Equal(t, "Autoshow&DJ", cards.Eq(1).Find("h3").Text())
	assert.Equal(t, 1, cards.Eq(1).Find(".portfolio-placeholder").Length())

	_, hidden := doc.Find("#lightbox").Attr("hidden")
	assert.True(t, hidden)
	assert.Zero(t, doc.Find("#lightbox video, #lightbox iframe").Length())
	assert.Equal(t, "site", doc.Find("body").AttrOr("class", ""))
}

func TestPortfolio_FilteredHidesOtherCards(t *testing.T) {
	view := gallery.NewView(gallery.NewSnapshot(entries()), gallery.NewClassifier(), "automotive", "")
	doc := render(t, Portfolio(view))

	assert.Equal(t, "automotive", doc.Find("a.filter-btn.active").AttrOr("data-filter", ""))

	_, keralaHidden := doc.Find(`article[data-id="kerala"]`).Attr("hidden")
	_, autoHidden := doc.Find(`article[data-id="autoshow"]`).Attr("hidden")
	assert.True(t, keralaHidden)
	assert.False(t, autoHidden)
	assert.Equal(t, "/portfolio/autoshow?category=automotive",
		doc.Find(`article[data-id="autoshow"] a`).AttrOr("href", ""))
}

func TestPortfolio_LightboxEmbed(t *testing.T) {
	view := gallery.NewView(gallery.NewSnapshot(entries()), gallery.NewClassifier(), "weddings", "kerala")
	doc := render(t, Portfolio(view))

	lb := doc.Find("#lightbox.active")
	require.Equal(t, 1, lb.Length())
	assert.Equal(t, "https://www.youtube.com/embed/GtvZtDWBPvc?autoplay=1", lb.Find("iframe").AttrOr("src", ""))
	assert.Equal(t, "Royal Kerala Wedding", lb.Find("#lightbox-title").Text())
	assert.Equal(t, "Luxury wedding film", lb.Find("#lightbox-desc").Text())
	assert.Equal(t, "/?category=weddings", lb.Find("a.lightbox-close").AttrOr("href", ""))
	assert.Equal(t, "test-nonce", doc.Find("script").AttrOr("nonce", ""))
	assert.Equal(t, "site overflow-hidden", doc.Find("body").AttrOr("class", ""))
	assert.Equal(t, "Royal Kerala Wedding | Frame Weavers", doc.Find("title").Text())
	assert.Equal(t, "https://frameweavers.test/portfolio/kerala", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
}

func TestPortfolio_LightboxDirectVideo(t *testing.T) {
	view := gallery.NewView(gallery.NewSnapshot(entries()), gallery.NewClassifier(), "", "autoshow")
	doc := render(t, Portfolio(view))

	video := doc.Find("#lightbox video")
	require.Equal(t, 1, video.Length())
	assert.Equal(t, "/videos/Autoshow&Dj.mp4", video.AttrOr("src", ""))
	_, autoplay := video.Attr("autoplay")
	_, controls := video.Attr("controls")
	assert.True(t, autoplay)
	assert.True(t, controls)
	assert.Zero(t, doc.Find("#lightbox iframe").Length())
}

func TestPortfolio_Empty(t *testing.T) {
	view := gallery.NewView(gallery.NewSnapshot(nil), gallery.NewClassifier(), "", "")
	doc := render(t, Portfolio(view))

	assert.Equal(t, "No projects found.", doc.Find(".portfolio-empty").Text())
	assert.Zero(t, doc.Find("article").Length())
}

func TestPortfolioUnavailable(t *testing.T) {
	doc := render(t, PortfolioUnavailable())
	assert.Equal(t, "Unable to load projects.", doc.Find(".portfolio-error").Text())
}

func TestPortfolio_EscapesContent(t *testing.T) {
	view := gallery.NewView(gallery.NewSnapshot([]*model.CatalogEntry{
		{ID: "x", Title: `<script>alert(1)</script>`, Category: "events"},
	}), gallery.NewClassifier(), "", "")
	doc := render(t, Portfolio(view))

	assert.Zero(t, doc.Find("article script").Length())
	assert.Equal(t, `<script>alert(1)</script>`, doc.Find("article h3").Text())
}

func TestNotFound(t *testing.T) {
	doc := render(t, NotFound())
	assert.Equal(t, "Page not found", doc.Find("h1").Text())
	assert.Equal(t, "Not found | Frame Weavers", doc.Find("title").Text())
}

func TestPortfolio_CanonicalFromRequestPath(t *testing.T) {
	view := gallery.NewView(gallery.NewSnapshot(entries()), gallery.NewClassifier(), "weddings", "")

	doc := renderAt(t, "/", Portfolio(view))
	assert.Equal(t, "https://frameweavers.test/", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))

	doc = render(t, Portfolio(view))
	assert.Zero(t, doc.Find(`link[rel="canonical"]`).Length())
}

func TestPortfolio_SanitizesUnsafeURLs(t *testing.T) {
	view := gallery.NewView(gallery.NewSnapshot([]*model.CatalogEntry{
		{ID: "x", Title: "Bad", Category: "events",
			ImageURL: "javascript:alert(1)", VideoURL: "javascript:alert(2)"},
	}), gallery.NewClassifier(), "", "x")
	doc := render(t, Portfolio(view))

	unsafe := string(templ.FailedSanitizationURL)
	assert.Equal(t, unsafe, doc.Find("article img").AttrOr("src", ""))
	assert.Equal(t, "raw", doc.Find("#lightbox iframe").AttrOr("data-rule", ""))
	assert.Equal(t, unsafe, doc.Find("#lightbox iframe").AttrOr("src", ""))
}
