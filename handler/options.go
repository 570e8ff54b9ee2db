package handler

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-oauth-session/sessions"
	"github.com/jrsteele09/go-oauth-session/token"
)

const DefaultSessionName = "nuxtSession"

// FetchUserFunc loads the profile for accessToken. Returning an error that
// wraps errors.ErrInvalidToken marks the token itself as rejected; any other
// error only costs the profile.
type FetchUserFunc func(accessToken string, r *http.Request, opts Options) (map[string]any, error)

// LogoutFunc runs during logout, before the redirect. It may write its own
// response, in which case no redirect is sent.
type LogoutFunc func(w http.ResponseWriter, r *http.Request, redirectURL string) error

// Options are the values a Handler works with, already resolved for the
// current request.
type Options struct {
	OAuthHost       string
	AuthorizePath   string
	AccessTokenPath string
	ClientID        string
	ClientSecret    string
	Scopes          []string

	SessionName string
	SecretKey   string
	Duration    time.Duration

	// TokenLifetime is assumed for tokens that arrive without an expiry.
	TokenLifetime time.Duration

	FetchUser FetchUserFunc
	OnLogout  LogoutFunc

	TestMode bool
	Logging  bool
}

// WithDefaults fills the zero values that have a sensible default.
func (o Options) WithDefaults() Options {
	if o.SessionName == "" {
		o.SessionName = DefaultSessionName
	}
	if o.Duration <= 0 {
		o.Duration = sessions.DefaultDuration
	}
	if o.TokenLifetime <= 0 {
		o.TokenLifetime = token.DefaultLifetime
	}
	return o
}
