package middleware

import (
	"context"

	"github.com/SlavaKuntsov/software-security/internal/domain"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated caller, passed explicitly through the request
// context instead of ambient global state.
type Identity struct {
	UserID domain.UserID
	Role   domain.Role
}

// WithIdentity injects the authenticated identity into the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity from the context, or false.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityContextKey)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
