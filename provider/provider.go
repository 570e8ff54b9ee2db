// Package provider is the narrow client the session layer needs from an
// OAuth2 authorization server: build the authorize redirect, exchange a code
// and refresh a token.
package provider

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-oauth-session/token"
)

// Provider drives the OAuth2 authorization-code grant.
type Provider interface {
	// AuthCodeURL returns the provider's authorize URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code found on the callback request for a token.
	Exchange(ctx context.Context, r *http.Request) (*token.Token, error)

	// Refresh obtains a new access token using t's refresh token.
	Refresh(ctx context.Context, t *token.Token) (*token.Token, error)
}

// UserFetcher loads the profile of the user an access token belongs to.
type UserFetcher func(ctx context.Context, accessToken string) (map[string]any, error)
