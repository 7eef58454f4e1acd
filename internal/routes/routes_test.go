package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/frameweavers/showreel/internal/app"
	"github.com/frameweavers/showreel/internal/config"
	"github.com/frameweavers/showreel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *config.Config {
	return &config.Config{
		AppName:            "Frame Weavers",
		AppEnv:             "development",
		AppURL:             "https://frameweavers.test",
		UploadURL:          "/uploads",
		UploadFolder:       "frame_weavers",
		MaxUploadSize:      10 << 20,
		RequestTimeout:     5 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		StorageDriver:      config.StorageDriverLocal,
	}
}

func newServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return SetupRoutes(a)
}

func databaseServer(t *testing.T) (http.Handler, string) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.CatalogSource = config.CatalogSourceDatabase
	cfg.DBDriver = "sqlite"
	cfg.DBConnection = filepath.Join(dir, "showreel.db")
	cfg.UploadPath = filepath.Join(dir, "uploads")
	return newServer(t, cfg), cfg.UploadPath
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func listEntries(t *testing.T, h http.Handler) []model.CatalogEntry {
	t.Helper()
	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []model.CatalogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	return entries
}

func createEntry(t *testing.T, h http.Handler, title string, thumbnail []byte) map[string]any {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("category", "weddings"))
	require.NoError(t, mw.WriteField("videoUrl", "https://youtu.be/abc123"))
	if thumbnail != nil {
		part, err := mw.CreateFormFile("thumbnail", "thumb.png")
		require.NoError(t, err)
		_, _ = part.Write(thumbnail)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(h, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["item"].(map[string]any)
}

var png = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestDatabaseCatalog_EndToEnd(t *testing.T) {
	h, uploads := databaseServer(t)

	assert.Empty(t, listEntries(t, h))

	first := createEntry(t, h, "First", png)
	createEntry(t, h, "Second", nil)
	createEntry(t, h, "Third", nil)

	// Thumbnail stored on disk and served back
	imageURL := first["imageUrl"].(string)
	require.True(t, strings.HasPrefix(imageURL, "/uploads/frame_weavers/images/"), imageURL)
	_, err := os.Stat(filepath.Join(uploads, strings.TrimPrefix(imageURL, "/uploads/")))
	require.NoError(t, err)
	rec := do(h, httptest.NewRequest(http.MethodGet, imageURL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	titles := func() []string {
		var out []string
		for _, e := range listEntries(t, h) {
			out = append(out, e.Title)
		}
		return out
	}
	assert.Equal(t, []string{"First", "Second", "Third"}, titles())

	rec = do(h, httptest.NewRequest(http.MethodPost, "/api/portfolio/reorder",
		strings.NewReader(`{"index":2,"direction":"up"}`)))
	assert.JSONEq(t, `{"success":true,"moved":true}`, rec.Body.String())
	assert.Equal(t, []string{"First", "Third", "Second"}, titles())

	rec = do(h, httptest.NewRequest(http.MethodDelete, "/api/portfolio/"+first["id"].(string), nil))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, []string{"Third", "Second"}, titles())
	_, err = os.Stat(filepath.Join(uploads, strings.TrimPrefix(imageURL, "/uploads/")))
	assert.True(t, os.IsNotExist(err))

	// Legacy index delete
	rec = do(h, httptest.NewRequest(http.MethodDelete, "/api/portfolio/1", nil))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, []string{"Third"}, titles())

	rec = do(h, httptest.NewRequest(http.MethodDelete, "/api/portfolio/5", nil))
	assert.JSONEq(t, `{"success":false,"message":"Not found"}`, rec.Body.String())
}

func TestDatabaseCatalog_PagesAndSitemap(t *testing.T) {
	h, _ := databaseServer(t)
	entry := createEntry(t, h, "Royal Kerala Wedding", nil)
	id := entry["id"].(string)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/portfolio/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/embed/abc123?autoplay=1", doc.Find("#lightbox iframe").AttrOr("src", ""))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "nonce-")

	rec = do(h, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	assert.Contains(t, rec.Body.String(), "https://frameweavers.test/portfolio/"+id)
}

func TestStaticCatalog(t *testing.T) {
	cfg := baseConfig()
	cfg.CatalogSource = config.CatalogSourceStatic
	h := newServer(t, cfg)

	entries := listEntries(t, h)
	require.Len(t, entries, 2)
	assert.Equal(t, "Royal Kerala Wedding", entries[0].Title)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/?category=automotive", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Autoshow&DJ", doc.Find(`article[data-id="autoshow-dj"] h3`).Text())
	assert.Equal(t, "https://frameweavers.test/", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))

	rec = do(h, httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Writes are not mounted, so the fallback answers
	rec = do(h, httptest.NewRequest(http.MethodPost, "/api/portfolio/reorder", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	assert.Contains(t, rec.Body.String(), "Sitemap: https://frameweavers.test/sitemap.xml")
}
