package shared

import "context"

// Identity describes the caller as resolved by the transport edge. It is
// passed explicitly into service operations instead of being read from
// ambient session state.
type Identity struct {
	Email         string
	Authenticated bool
}

// Anonymous is the identity of an unauthenticated caller.
var Anonymous = Identity{}

type identityContextKey struct{}

// ContextWithIdentity stores the caller identity in context.
func ContextWithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, ident)
}

// IdentityFromContext extracts the caller identity from context. It returns
// Anonymous when the request carried no valid bearer token.
func IdentityFromContext(ctx context.Context) Identity {
	ident, _ := ctx.Value(identityContextKey{}).(Identity)
	return ident
}
