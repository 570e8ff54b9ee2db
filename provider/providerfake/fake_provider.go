package providerfake

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/jrsteele09/go-oauth-session/provider"
	"github.com/jrsteele09/go-oauth-session/token"
)

const AuthorizeURL = "https://provider.test/oauth/authorize"

// FakeProvider records calls and returns canned results.
type FakeProvider struct {
	mu sync.Mutex

	ExchangeToken *token.Token
	ExchangeErr   error
	RefreshToken  *token.Token
	RefreshErr    error

	ExchangeCalls int
	RefreshCalls  int
	Refreshed     []*token.Token
	States        []string
}

var _ provider.Provider = (*FakeProvider)(nil)

// NewFakeProvider returns a provider that succeeds with the given tokens.
func NewFakeProvider(exchanged, refreshed *token.Token) *FakeProvider {
	return &FakeProvider{ExchangeToken: exchanged, RefreshToken: refreshed}
}

func (f *FakeProvider) AuthCodeURL(state string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.States = append(f.States, state)
	return AuthorizeURL + "?state=" + url.QueryEscape(state)
}

func (f *FakeProvider) Exchange(_ context.Context, _ *http.Request) (*token.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExchangeCalls++
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	return f.ExchangeToken.Clone(), nil
}

func (f *FakeProvider) Refresh(_ context.Context, t *token.Token) (*token.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshCalls++
	f.Refreshed = append(f.Refreshed, t.Clone())
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	return f.RefreshToken.Clone(), nil
}
