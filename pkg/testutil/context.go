package testutil

import (
	"net/http"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// WithPrincipal simulates what the auth middleware stores for an
// authenticated request.
func WithPrincipal(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), userID, role))
}

// WithClient sets the client address and user agent the metadata
// middleware would extract.
func WithClient(req *http.Request, ip, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, userAgent))
}
