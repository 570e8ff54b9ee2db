package handler

import (
	"fmt"
	"net/http"
	"strings"
)

// AuthenticateCallbackToken completes the authorization-code exchange and
// redirects to the destination carried in state. Any failure restarts the
// OAuth flow towards the same destination.
func (h *Handler) AuthenticateCallbackToken() {
	redirectURL := RedirectFromState(h.req.URL.Query().Get("state"))

	t, err := h.provider.Exchange(h.req.Context(), h.req)
	if err != nil {
		h.log.Warn().Err(err).Str("redirectUrl", redirectURL).Msg("code exchange failed, restarting login")
		h.RedirectToOAuth(redirectURL)
		return
	}
	if err := h.PersistToken(t); err != nil {
		h.log.Warn().Err(err).Str("redirectUrl", redirectURL).Msg("exchanged token rejected, restarting login")
		h.RedirectToOAuth(redirectURL)
		return
	}

	h.debug().Str("redirectUrl", redirectURL).Msg("login complete")
	h.Redirect(redirectURL)
}

// RedirectToOAuth sends the caller to the provider's authorize page. An empty
// redirectURL returns the caller to the current request URL afterwards.
func (h *Handler) RedirectToOAuth(redirectURL string) {
	if redirectURL == "" {
		redirectURL = h.req.URL.RequestURI()
	}
	h.Redirect(h.provider.AuthCodeURL(EncodeState(redirectURL)))
}

// Redirect writes a 302 with an empty body.
func (h *Handler) Redirect(location string) {
	h.res.Header().Set("Location", location)
	h.res.WriteHeader(http.StatusFound)
}

// Logout clears the session, expires its cookie and redirects to the
// redirect-url query parameter. OnLogout runs first; its failure is logged,
// and if it wrote a response no redirect follows.
func (h *Handler) Logout() {
	h.EnsureSession()
	h.session.Reset()
	h.session.SetDuration(0)
	h.identity.AccessToken = ""
	h.identity.User = nil

	redirectURL := h.req.URL.Query().Get("redirect-url")
	if redirectURL == "" {
		redirectURL = DefaultRedirectURL
	}

	if err := h.runOnLogout(redirectURL); err != nil {
		h.log.Err(err).Msg("logout hook failed")
	}
	if h.res.HeadersSent() {
		return
	}
	h.debug().Str("redirectUrl", redirectURL).Msg("logged out")
	h.Redirect(redirectURL)
}

func (h *Handler) runOnLogout(redirectURL string) (err error) {
	if h.opts.OnLogout == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("logout hook panicked: %v", rec)
		}
	}()
	return h.opts.OnLogout(h.res, h.req, redirectURL)
}

// IsRoute reports whether the request path falls under the named route.
func (h *Handler) IsRoute(name Route) bool {
	prefix := RoutePath(name)
	return prefix != "" && strings.HasPrefix(h.req.URL.Path, prefix)
}
