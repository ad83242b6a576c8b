// Package requesttime pins one clock reading per request.
package requesttime

import (
	"net/http"
	"time"

	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// Middleware stamps the request with the UTC time it arrived; downstream
// code reads it through requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived := time.Now().UTC()
		next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), arrived)))
	})
}
