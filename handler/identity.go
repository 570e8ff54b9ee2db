package handler

import "context"

// Identity is what the current request knows about its caller once the
// handler has run. Later pipeline stages read it from the request context.
type Identity struct {
	AccessToken string
	User        map[string]any
}

type identityKey struct{}

func withIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by the handler, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// AccessTokenFromContext returns the request-scoped access token or "".
func AccessTokenFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.AccessToken
	}
	return ""
}

// UserFromContext returns the request-scoped user profile or nil.
func UserFromContext(ctx context.Context) map[string]any {
	if id := IdentityFromContext(ctx); id != nil {
		return id.User
	}
	return nil
}
