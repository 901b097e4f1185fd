package auth

import (
	"context"

	"github.com/bcnelson/yatube/internal/domain"
)

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity returns a context carrying the request's identity.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFrom returns the identity stored in ctx; anonymous if none.
func IdentityFrom(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityContextKey).(domain.Identity)
	return id
}
