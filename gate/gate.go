// Package gate decides, per route, whether a page needs a signed-in caller
// and sends anonymous callers to the login route when it does.
package gate

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-oauth-session/handler"
)

// RouteMeta is what a Requirement gets to look at.
type RouteMeta struct {
	Name string
	Path string
	Meta map[string]any
}

// Requirement reports whether a route needs authentication.
type Requirement func(RouteMeta) bool

var (
	Required Requirement = func(RouteMeta) bool { return true }
	Optional Requirement = func(RouteMeta) bool { return false }
)

// When builds a Requirement from a predicate over the route metadata.
func When(pred func(RouteMeta) bool) Requirement {
	return pred
}

// Route declares a page and its authentication requirement. Path is a
// prefix; nested routes are matched together, as a parent layout and its
// child page would be.
type Route struct {
	Name         string
	Path         string
	RequiresAuth Requirement
	Meta         map[string]any
}

func (r Route) meta() RouteMeta {
	return RouteMeta{Name: r.Name, Path: r.Path, Meta: r.Meta}
}

// requires treats a nil Requirement as Optional.
func (r Route) requires() bool {
	return r.RequiresAuth != nil && r.RequiresAuth(r.meta())
}

// Decision is the outcome of Check.
type Decision struct {
	Allowed     bool
	RedirectURL string
}

// Check lets the caller through unless one of the matched routes requires
// authentication and state carries no access token.
func Check(state ClientState, matched []Route, fullPath string) Decision {
	required := false
	for _, r := range matched {
		if r.requires() {
			required = true
			break
		}
	}
	if !required || state.AccessToken != "" {
		return Decision{Allowed: true}
	}
	return Decision{RedirectURL: LoginURL(fullPath)}
}

// Gate holds the route declarations for an application.
type Gate struct {
	routes []Route
}

// New creates a gate over routes.
func New(routes ...Route) *Gate {
	return &Gate{routes: routes}
}

// Match returns every route whose path prefixes path, on segment boundaries.
func (g *Gate) Match(path string) []Route {
	var matched []Route
	for _, r := range g.routes {
		if matchesPrefix(r.Path, path) {
			matched = append(matched, r)
		}
	}
	return matched
}

func matchesPrefix(prefix, path string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Middleware redirects anonymous callers away from protected routes. It must
// run after the OAuth router so the request identity is populated.
func (g *Gate) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := Hydrate(r)
		d := Check(state, g.Match(r.URL.Path), r.URL.RequestURI())
		if !d.Allowed {
			log.Debug().Str("path", r.URL.Path).Msg("authentication required")
			w.Header().Set("Location", d.RedirectURL)
			w.WriteHeader(http.StatusFound)
			return
		}
		next(w, r.WithContext(NewContext(r.Context(), state)))
	}
}

// LoginURL is the login route that returns to redirectURL afterwards.
func LoginURL(redirectURL string) string {
	return actionURL(handler.PathLogin, redirectURL)
}

// LogoutURL is the logout route that lands on redirectURL afterwards.
func LogoutURL(redirectURL string) string {
	return actionURL(handler.PathLogout, redirectURL)
}

func actionURL(path, redirectURL string) string {
	if redirectURL == "" {
		redirectURL = handler.DefaultRedirectURL
	}
	return path + "?redirect-url=" + url.QueryEscape(redirectURL)
}
