// Package requesttime stamps each request with one "now" so every event a
// request emits carries the same timestamp.
package requesttime

import (
	"net/http"
	"time"

	"zns/pkg/requestcontext"
)

// Middleware captures the time the request arrived.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
