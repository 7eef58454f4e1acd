package middleware

import (
	"net/http"
	"path"

	"github.com/frameweavers/showreel/internal/ctxkeys"
)

// WithURLPath stores the cleaned request path. Pages build their canonical
// link from it.
func WithURLPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxkeys.WithURLPath(r.Context(), path.Clean("/"+r.URL.Path))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
