package metadata

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain takes first", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip header", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote addr ipv4", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr ipv6", nil, "[::1]:5555", "::1"},
		{"remote addr without port", nil, "192.0.2.9", "192.0.2.9"},
		{"garbage forwarded header is ignored", map[string]string{"X-Forwarded-For": "not-an-ip"}, "192.0.2.1:5555", "192.0.2.1"},
		{"no address at all", nil, "", "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIPFromRequest(req))
		})
	}
}

func TestClientMetadataSetsContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("User-Agent", "Mozilla/5.0")

	var ip, ua string
	ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.1", ip)
	assert.Equal(t, "Mozilla/5.0", ua)
}

func TestClientMetadataTruncatesUserAgent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", strings.Repeat("x", 2000))

	var ua string
	ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = requestcontext.UserAgent(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), req)

	assert.Len(t, ua, maxUserAgent)
}
