package middleware

import (
	"net/http"
	"strings"

	"github.com/frameweavers/showreel/internal/config"
)

// SecurityHeaders sets the CSP and the usual hardening headers. Scripts
// need the request nonce; frames and media may come from any https origin
// because entries link to arbitrary players.
func SecurityHeaders(cfg *config.Config) func(http.Handler) http.Handler {
	mediaSrc := []string{"'self'", "https:", "blob:"}
	if cfg.S3Endpoint != "" {
		mediaSrc = append(mediaSrc, cfg.S3Endpoint)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scriptSrc := "'self'"
			if nonce := GetNonce(r.Context()); nonce != "" {
				scriptSrc += " 'nonce-" + nonce + "'"
			}

			csp := []string{
				"default-src 'self'",
				"script-src " + scriptSrc,
				"style-src 'self'",
				"img-src 'self' data: https:",
				"media-src " + strings.Join(mediaSrc, " "),
				"frame-src 'self' https://www.youtube.com https://player.vimeo.com https:",
				"object-src 'none'",
				"base-uri 'self'",
				"frame-ancestors 'self'",
			}

			h := w.Header()
			h.Set("Content-Security-Policy", strings.Join(csp, "; "))
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			if cfg.IsProduction() {
				h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
