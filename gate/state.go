package gate

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-oauth-session/handler"
)

// ClientState is the auth slice of the state handed to the client on the
// first render.
type ClientState struct {
	AccessToken string         `json:"accessToken"`
	User        map[string]any `json:"user,omitempty"`
}

// Hydrate builds the client state from the identity the OAuth router left on
// the request.
func Hydrate(r *http.Request) ClientState {
	id := handler.IdentityFromContext(r.Context())
	if id == nil {
		return ClientState{}
	}
	return ClientState{AccessToken: id.AccessToken, User: id.User}
}

// JSON returns the state as a script literal. encoding/json already escapes
// <, > and & so the value cannot close the surrounding script tag.
func (s ClientState) JSON() (template.JS, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// Actions are the login/logout helpers exposed to page code.
type Actions struct {
	// CurrentURL is used when an action is called without a destination.
	CurrentURL string
}

// ActionsFor returns the helpers for the page r is rendering.
func ActionsFor(r *http.Request) Actions {
	return Actions{CurrentURL: r.URL.RequestURI()}
}

func (a Actions) Login(redirectURL ...string) string {
	return LoginURL(a.pick(redirectURL))
}

func (a Actions) Logout(redirectURL ...string) string {
	return LogoutURL(a.pick(redirectURL))
}

func (a Actions) pick(redirectURL []string) string {
	if len(redirectURL) > 0 && redirectURL[0] != "" {
		return redirectURL[0]
	}
	return a.CurrentURL
}

type stateKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s ClientState) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// FromContext returns the state stored by the gate middleware.
func FromContext(ctx context.Context) (ClientState, bool) {
	s, ok := ctx.Value(stateKey{}).(ClientState)
	return s, ok
}
