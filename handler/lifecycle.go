package handler

import (
	"strings"

	"github.com/jrsteele09/go-oauth-session/token"
)

// Authenticate returns the session's token, refreshing it first when it has
// expired. It returns nil when there is no token or when refreshing fails; in
// the latter case the session is cleared. Provider errors are logged, never
// returned.
func (h *Handler) Authenticate() *token.Token {
	stored := h.GetSessionToken()
	if !stored.Valid() {
		return nil
	}

	current := stored.Normalize(h.opts.TokenLifetime)
	if current.Expired() {
		h.debug().Bool("refreshable", current.CanRefresh()).Msg("token expired, refreshing")
		refreshed, err := h.provider.Refresh(h.req.Context(), current)
		if err != nil {
			h.log.Warn().Err(err).Msg("token refresh failed, clearing session")
			h.invalidate()
			return nil
		}
		current = refreshed
	}

	if err := h.PersistToken(current); err != nil {
		h.log.Warn().Err(err).Msg("token rejected, clearing session")
		h.invalidate()
		return nil
	}
	return h.GetSessionToken()
}

// UseRefreshToken forces a refresh regardless of expiry. Without a stored
// refresh token the provider is not called and nil is returned.
func (h *Handler) UseRefreshToken() *token.Token {
	stored := h.GetSessionToken()
	if !stored.Valid() || !stored.CanRefresh() {
		h.debug().Msg("no refresh token in session")
		return nil
	}

	refreshed, err := h.provider.Refresh(h.req.Context(), stored)
	if err != nil {
		h.log.Warn().Err(err).Msg("forced refresh failed, clearing session")
		h.invalidate()
		return nil
	}
	if err := h.PersistToken(refreshed); err != nil {
		h.log.Warn().Err(err).Msg("refreshed token rejected, clearing session")
		h.invalidate()
		return nil
	}
	return h.GetSessionToken()
}

// SetTokens adopts tokens obtained elsewhere. They are refreshed once to
// prove they are live before being stored; on failure the existing session
// is left untouched and nil is returned.
func (h *Handler) SetTokens(accessToken, refreshToken string) *token.Token {
	h.EnsureSession()
	if refreshToken == "" {
		h.debug().Msg("token handoff without refresh token")
		return nil
	}

	supplied := token.New(accessToken, refreshToken, token.Expiry{})
	refreshed, err := h.provider.Refresh(h.req.Context(), supplied)
	if err != nil {
		h.log.Warn().Err(err).Msg("token handoff refresh failed")
		return nil
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = refreshToken
	}
	if err := h.PersistToken(refreshed); err != nil {
		h.log.Warn().Err(err).Msg("token handoff rejected")
		return nil
	}
	return h.GetSessionToken()
}

// ExtractToken returns the credential from the Authorization header, taken
// as the second space-separated segment, or "".
func (h *Handler) ExtractToken() string {
	parts := strings.Split(h.req.Header.Get("Authorization"), " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// CheckRequestAuthorization adopts a bearer token from the request into the
// session. It reports whether a token was adopted. Presenting the stored
// access token keeps its refresh token; any other credential drops the cached
// profile so it is fetched for the new token. A rejected token logs the
// caller out, which writes a redirect.
func (h *Handler) CheckRequestAuthorization() bool {
	accessToken := h.ExtractToken()
	if accessToken == "" {
		return false
	}

	bearer := token.FromBearer(accessToken, h.opts.TokenLifetime)
	if bearer == nil {
		return false
	}
	if stored := h.GetSessionToken(); stored.Valid() && stored.AccessToken == bearer.AccessToken {
		bearer.RefreshToken = stored.RefreshToken
	} else if h.session.HasUser() {
		// The cached profile belongs to a different credential.
		h.session.SetUser(nil)
	}

	if err := h.PersistToken(bearer); err != nil {
		h.log.Warn().Err(err).Msg("bearer token rejected, logging out")
		h.Logout()
		return false
	}
	h.debug().Msg("bearer token adopted")
	return true
}

// invalidate clears the session and expires its cookie.
func (h *Handler) invalidate() {
	_ = h.PersistToken(nil)
	h.session.SetDuration(0)
}
