// Package auth resolves the caller's identity from a bearer token or a session cookie
// and carries it on the request context.
package auth

import (
	"context"

	"github.com/hindinewshub/news-api/internal/models"
)

type ctxKey int

const ctxKeyIdentity ctxKey = iota

// Identity is a verified caller. User is nil when the caller has no user row yet.
type Identity struct {
	UserID string
	User   *models.User
}

// Role returns the caller's role. Anonymous callers and identities without a user
// row have the empty role.
func (i *Identity) Role() models.Role {
	if i == nil || i.User == nil {
		return ""
	}
	return i.User.Role
}

// Authenticated reports whether a verified identity is present
func (i *Identity) Authenticated() bool {
	return i != nil && i.UserID != ""
}

// WithIdentity stores the identity on ctx
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// FromContext returns the caller identity, or nil for anonymous requests
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKeyIdentity).(*Identity)
	return id
}
