package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/platform/policy"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity describes the authenticated caller for the lifetime of a request.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     string
	Elevated bool
}

// PolicyIdentity converts the caller into the policy engine's identity shape.
func (id Identity) PolicyIdentity() policy.Identity {
	return policy.Identity{UserID: id.UserID, Role: id.Role, Elevated: id.Elevated}
}

// WithIdentity returns a child context carrying the caller identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the caller identity set by the JWT middleware.
// The second return is false for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
