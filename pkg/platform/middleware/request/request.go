// Package request assigns and exposes the per-request correlation ID.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
)

// HeaderRequestID is echoed on every response and accepted from trusted proxies.
const HeaderRequestID = "X-Request-ID"

const maxInboundIDLength = 128

// RequestID reuses a sane inbound X-Request-ID or generates one, stores it in
// the context, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" || len(reqID) > maxInboundIDLength {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
