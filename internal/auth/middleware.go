// Package auth resolves the caller identity supplied by the API gateway.
// Authentication and role checks happen upstream; this service only consumes
// the pre-authorized result carried in trusted headers.
package auth

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	staffKey  contextKey = "staff"
)

const (
	// HeaderUserID carries the authenticated caller id set by the gateway.
	HeaderUserID = "X-User-ID"
	// HeaderStaff carries the gateway's "may manage this event's meals"
	// decision for the request.
	HeaderStaff = "X-Catering-Staff"
)

// Middleware rejects requests without a gateway identity and injects the
// caller into the request context.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(HeaderUserID)
			if userID == "" {
				http.Error(w, "missing gateway identity", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, staffKey, r.Header.Get(HeaderStaff) == "true")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff guards management endpoints behind the gateway's
// authorization decision.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsStaff(r.Context()) {
			http.Error(w, "staff permission required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the authenticated caller id, empty when the middleware did
// not run.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// IsStaff reports the gateway's management decision for this request.
func IsStaff(ctx context.Context) bool {
	staff, ok := ctx.Value(staffKey).(bool)
	return ok && staff
}
