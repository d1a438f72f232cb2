package auth

import "context"

// Identity is the per-request resolved identity: who the session token says
// the caller is. A nil *Identity means anonymous. It lives only as long as
// the request; it is never persisted or shared across requests.
type Identity struct {
	// Username is the unique identifier (non-empty for a resolved identity).
	Username string
}

// identityKey is a private type for the identity context key.
type identityKey struct{}

// SetIdentity stores the resolved identity in the context.
func SetIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the resolved identity.
// Returns nil if the request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}
	return nil
}
