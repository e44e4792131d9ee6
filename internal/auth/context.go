// ABOUTME: Per-request identity propagation via context.Context
// ABOUTME: The only seam through which the store learns who is asking

package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when identity is read before being bound.
var ErrUnauthenticated = errors.New("no authenticated identity in context")

// Identity is the verified caller extracted from a bearer token.
// It is constructed once per request and never persisted.
type Identity struct {
	UserID string
	Role   Role
}

// identityKey is the key type for storing Identity in context.Context.
type identityKey struct{}

// WithIdentity returns a new context carrying the verified identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the bound identity. Every tenant-scoped
// query pulls its owner filter from here; caller-supplied user ids are
// never accepted.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}
