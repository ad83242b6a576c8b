// Package requestcontext carries per-request values (the authenticated
// principal, client metadata, request id, request time) from middleware to
// services without the services importing net/http.
package requestcontext

import (
	"context"
	"time"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
)

type key int

const (
	keyUserID key = iota
	keyRole
	keyTokenID
	keyTokenExpiry
	keyClientIP
	keyUserAgent
	keyRequestID
	keyNow
)

// value reads k as a T, yielding the zero T when absent.
func value[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// UserID is zero for anonymous requests such as public verification.
func UserID(ctx context.Context) id.UserID { return value[id.UserID](ctx, keyUserID) }

func Role(ctx context.Context) id.Role { return value[id.Role](ctx, keyRole) }

// WithPrincipal records the account resolved from the bearer token.
func WithPrincipal(ctx context.Context, userID id.UserID, role id.Role) context.Context {
	return context.WithValue(context.WithValue(ctx, keyUserID, userID), keyRole, role)
}

// TokenID is the jti of the access token that authenticated the request.
func TokenID(ctx context.Context) string { return value[string](ctx, keyTokenID) }

func TokenExpiry(ctx context.Context) time.Time { return value[time.Time](ctx, keyTokenExpiry) }

// WithToken records the presented token so logout can revoke it until expiry.
func WithToken(ctx context.Context, jti string, expiresAt time.Time) context.Context {
	return context.WithValue(context.WithValue(ctx, keyTokenID, jti), keyTokenExpiry, expiresAt)
}

func ClientIP(ctx context.Context) string { return value[string](ctx, keyClientIP) }

func UserAgent(ctx context.Context) string { return value[string](ctx, keyUserAgent) }

// WithClientMetadata stores the caller's address and User-Agent for audit
// records and login history.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	return context.WithValue(context.WithValue(ctx, keyClientIP, clientIP), keyUserAgent, userAgent)
}

func RequestID(ctx context.Context) string { return value[string](ctx, keyRequestID) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// Now is the instant the request entered the server. Outside a request
// (CLI, workers) it is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(keyNow).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins Now, so an issued certificate and its audit event share one
// timestamp.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, keyNow, t)
}
