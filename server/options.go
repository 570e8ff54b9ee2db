package server

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-oauth-session/handler"
	"github.com/jrsteele09/go-oauth-session/provider"
	"github.com/jrsteele09/go-oauth-session/sessions"
)

// Setting is a configuration value that is either fixed or derived from the
// request being served.
type Setting[T any] struct {
	value T
	fn    func(*http.Request) T
}

// Static returns a Setting that always resolves to v.
func Static[T any](v T) Setting[T] {
	return Setting[T]{value: v}
}

// FromRequest returns a Setting computed per request.
func FromRequest[T any](fn func(*http.Request) T) Setting[T] {
	return Setting[T]{fn: fn}
}

// Resolve returns the value for r. The zero Setting resolves to T's zero value.
func (s Setting[T]) Resolve(r *http.Request) T {
	if s.fn != nil {
		return s.fn(r)
	}
	return s.value
}

// IsDynamic reports whether the value depends on the request.
func (s Setting[T]) IsDynamic() bool {
	return s.fn != nil
}

// ProviderFactory builds the provider client for one request.
type ProviderFactory func(r *http.Request, opts handler.Options) provider.Provider

// StoreFactory builds the session store for resolved options.
type StoreFactory func(opts handler.Options) (sessions.Store, error)

// Options configure the OAuth middleware. Every Setting is resolved once per
// request before the lifecycle handler is built.
type Options struct {
	OAuthHost       Setting[string]
	AuthorizePath   Setting[string]
	AccessTokenPath Setting[string]
	ClientID        Setting[string]
	ClientSecret    Setting[string]
	Scopes          Setting[[]string]

	SessionName Setting[string]
	SecretKey   Setting[string]
	Duration    Setting[time.Duration]

	TokenLifetime Setting[time.Duration]

	TestMode Setting[bool]
	Logging  Setting[bool]

	FetchUser handler.FetchUserFunc
	OnLogout  handler.LogoutFunc

	// Endpoint replaces OAuthHost and the paths, typically from OIDC discovery.
	Endpoint *oauth2.Endpoint
	// HTTPClient is used for provider calls when set.
	HTTPClient *http.Client

	NewProvider ProviderFactory
	NewStore    StoreFactory
}

// Resolve evaluates every Setting against r.
func (o Options) Resolve(r *http.Request) handler.Options {
	scopes := o.Scopes.Resolve(r)
	return handler.Options{
		OAuthHost:       o.OAuthHost.Resolve(r),
		AuthorizePath:   o.AuthorizePath.Resolve(r),
		AccessTokenPath: o.AccessTokenPath.Resolve(r),
		ClientID:        o.ClientID.Resolve(r),
		ClientSecret:    o.ClientSecret.Resolve(r),
		Scopes:          append([]string(nil), scopes...),
		SessionName:     o.SessionName.Resolve(r),
		SecretKey:       o.SecretKey.Resolve(r),
		Duration:        o.Duration.Resolve(r),
		TokenLifetime:   o.TokenLifetime.Resolve(r),
		FetchUser:       o.FetchUser,
		OnLogout:        o.OnLogout,
		TestMode:        o.TestMode.Resolve(r),
		Logging:         o.Logging.Resolve(r),
	}.WithDefaults()
}

// FetchUserWith adapts a provider profile fetcher to the handler callback.
func FetchUserWith(fetch provider.UserFetcher) handler.FetchUserFunc {
	return func(accessToken string, r *http.Request, _ handler.Options) (map[string]any, error) {
		return fetch(r.Context(), accessToken)
	}
}
