package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	identityKey contextKey = "identity"
)

// WithIdentity adds the authenticated owner identity to the request context
func WithIdentity(r *http.Request, identity string) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, identity)
	return r.WithContext(ctx)
}

// GetIdentity retrieves the owner identity from context, empty if not set
func GetIdentity(r *http.Request) string {
	identity, _ := r.Context().Value(identityKey).(string)
	return identity
}
