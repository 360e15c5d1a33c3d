package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the cookie the session token is stored in.
const CookieName = "auth-token"

type ownerKey struct{}

// WithOwner returns a context carrying the authenticated user id.
func WithOwner(ctx context.Context, ownerID int64) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerID returns the authenticated user id stored by WithOwner.
func OwnerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ownerKey{}).(int64)
	return id, ok && id > 0
}

// TokenFromRequest returns the session token from the auth cookie, falling back to
// an Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
