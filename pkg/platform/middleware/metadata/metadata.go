// Package metadata records who is calling: the client address and the
// User-Agent that end up in audit events and login history.
package metadata

import (
	"net"
	"net/http"
	"strings"

	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// maxUserAgent bounds what a client can push into audit rows.
const maxUserAgent = 512

func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		if len(ua) > maxUserAgent {
			ua = ua[:maxUserAgent]
		}
		next.ServeHTTP(w, r.WithContext(requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), ua)))
	})
}

// ClientIPFromRequest prefers proxy headers (the left-most X-Forwarded-For
// hop, then X-Real-IP) and falls back to the socket peer. Header values
// that do not parse as an IP are ignored.
func ClientIPFromRequest(r *http.Request) string {
	if hop, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); validIP(hop) {
		return strings.TrimSpace(hop)
	}
	if xri := r.Header.Get("X-Real-IP"); validIP(xri) {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	return r.RemoteAddr
}

func validIP(s string) bool {
	return net.ParseIP(strings.TrimSpace(s)) != nil
}
