package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/frameweavers/showreel/assets"
	"github.com/frameweavers/showreel/internal/app"
	"github.com/frameweavers/showreel/internal/handler"
	"github.com/frameweavers/showreel/internal/middleware"
)

// writesPerMinute caps catalog writes per client IP
const writesPerMinute = 30

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	pages := handler.NewPageHandler(app.Catalog, app.Classifier)
	seo := handler.NewSEOHandler(app.SitemapService, app.Cfg.AppURL)

	var writer handler.CatalogWriter
	if app.CatalogService != nil {
		writer = app.CatalogService
	}
	portfolio := handler.NewPortfolioHandler(app.Catalog, writer, app.Cfg.MaxUploadSize)

	mux := http.NewServeMux()

	// ============================================================================
	// STATIC FILES
	// ============================================================================

	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assets.AssetsFS))))

	if app.UploadDir != "" && strings.HasPrefix(app.Cfg.UploadURL, "/") {
		prefix := app.Cfg.UploadURL + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(app.UploadDir))))
	}

	// SEO
	mux.HandleFunc("GET /robots.txt", seo.Robots)
	mux.HandleFunc("GET /sitemap.xml", seo.Sitemap)

	// ============================================================================
	// PAGES
	// ============================================================================

	mux.HandleFunc("GET /{$}", pages.Home)
	mux.HandleFunc("GET /portfolio/{id}", pages.Detail)

	// ============================================================================
	// API
	// ============================================================================

	mux.HandleFunc("GET /api/portfolio", portfolio.List)

	// Static deployments have nothing to write to
	if writer != nil {
		limit := middleware.RateLimitWrites(middleware.NewRateLimiter(writesPerMinute, time.Minute))

		mux.Handle("POST /api/portfolio", limit(http.HandlerFunc(portfolio.Create)))
		mux.Handle("POST /api/portfolio/reorder", limit(http.HandlerFunc(portfolio.Reorder)))
		mux.Handle("DELETE /api/portfolio/{ref}", limit(http.HandlerFunc(portfolio.Delete)))
	}

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", pages.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Config(app.Cfg),
		middleware.NonceMiddleware, // Must run before SecurityHeaders
		middleware.SecurityHeaders(app.Cfg),
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.WithURLPath,
	)
}
