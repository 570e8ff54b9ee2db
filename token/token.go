package token

import (
	"time"
)

// DefaultLifetime is used when neither the provider nor the stored token says
// when an access token expires.
const DefaultLifetime = 1 * time.Hour

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Token is the canonical projection of an OAuth2 token as it is kept in the
// session and exposed to callers. Only these three fields are ever persisted.
type Token struct {
	// AccessToken is the credential presented to resource servers.
	AccessToken string `json:"accessToken"`

	// RefreshToken is optional. Without it the session cannot be silently
	// renewed and an expired access token invalidates the session.
	RefreshToken string `json:"refreshToken,omitempty"`

	// Expires is always an absolute instant once the token has crossed a
	// boundary (provider response, cookie decode, bearer header).
	Expires Expiry `json:"expires,omitzero"`
}

// New builds a token whose expiry has already been normalized.
func New(accessToken, refreshToken string, expires Expiry) *Token {
	return &Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Expires:      expires,
	}
}

// Valid reports whether the token carries an access token at all.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != ""
}

// CanRefresh reports whether a refresh token is available.
func (t *Token) CanRefresh() bool {
	return t != nil && t.RefreshToken != ""
}

// ExpiresIn returns the remaining lifetime. The result is negative for a
// token that has already expired.
func (t *Token) ExpiresIn() time.Duration {
	return t.Expires.Until()
}

// Expired reports whether the access token is no longer usable. A token
// without an expiry never expires on its own.
func (t *Token) Expired() bool {
	if t == nil {
		return true
	}
	if t.Expires.IsZero() {
		return false
	}
	return t.ExpiresIn() <= 0
}

// Normalize returns a copy whose expiry is absolute. A missing expiry is
// replaced with now + lifetime.
func (t *Token) Normalize(lifetime time.Duration) *Token {
	if t == nil {
		return nil
	}
	n := *t
	if n.Expires.IsZero() {
		if lifetime <= 0 {
			lifetime = DefaultLifetime
		}
		n.Expires = In(lifetime)
	}
	return &n
}

// Clone returns an independent copy of t.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
