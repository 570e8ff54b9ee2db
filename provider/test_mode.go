package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/jrsteele09/go-oauth-session/internal/errors"
	"github.com/jrsteele09/go-oauth-session/token"
)

const (
	TestAccessToken  = "accessToken"
	TestRefreshToken = "refreshToken"
	testCode         = "test-mode"
)

// TestModeProvider never leaves the site: the authorize URL points straight
// back at the callback and every exchange or refresh yields the same token.
type TestModeProvider struct {
	callbackURL string
	lifetime    time.Duration
}

var _ Provider = (*TestModeProvider)(nil)

// NewTestMode returns a provider for local development and end-to-end tests.
func NewTestMode(callbackURL string, lifetime time.Duration) *TestModeProvider {
	if lifetime <= 0 {
		lifetime = token.DefaultLifetime
	}
	return &TestModeProvider{callbackURL: callbackURL, lifetime: lifetime}
}

func (p *TestModeProvider) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("code", testCode)
	q.Set("state", state)
	return p.callbackURL + "?" + q.Encode()
}

func (p *TestModeProvider) Exchange(_ context.Context, r *http.Request) (*token.Token, error) {
	if r.URL.Query().Get("code") == "" {
		return nil, apperrors.ErrMissingCode
	}
	return p.fakeToken(), nil
}

func (p *TestModeProvider) Refresh(_ context.Context, t *token.Token) (*token.Token, error) {
	if !t.CanRefresh() {
		return nil, apperrors.ErrNoRefreshToken
	}
	return p.fakeToken(), nil
}

func (p *TestModeProvider) fakeToken() *token.Token {
	return token.New(TestAccessToken, TestRefreshToken, token.In(p.lifetime))
}
