// Package handler drives the OAuth token lifecycle for a single request:
// session loading, token persistence, refresh, callback handling and logout.
package handler

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-oauth-session/internal/errors"
	"github.com/jrsteele09/go-oauth-session/provider"
	"github.com/jrsteele09/go-oauth-session/sessions"
	"github.com/jrsteele09/go-oauth-session/token"
)

// Handler is created per request and must not be shared between requests.
type Handler struct {
	res      *ResponseWriter
	req      *http.Request
	opts     Options
	provider provider.Provider
	store    sessions.Store
	session  *sessions.Session
	identity *Identity
	log      zerolog.Logger
}

// New binds a handler to one request/response pair.
func New(w http.ResponseWriter, r *http.Request, opts Options, p provider.Provider, store sessions.Store) *Handler {
	opts = opts.WithDefaults()
	h := &Handler{
		res:      NewResponseWriter(w),
		opts:     opts,
		provider: p,
		store:    store,
	}
	if id := IdentityFromContext(r.Context()); id != nil {
		h.identity = id
	} else {
		h.identity = &Identity{}
		r = r.WithContext(withIdentity(r.Context(), h.identity))
	}
	h.req = r
	h.log = log.With().Str("component", "oauth-session").Str("path", r.URL.Path).Logger()
	return h
}

// Request returns the request carrying the session and identity, for use by
// the rest of the pipeline.
func (h *Handler) Request() *http.Request {
	return h.req
}

// ResponseWriter returns the wrapped writer that commits the session cookie.
func (h *Handler) ResponseWriter() *ResponseWriter {
	return h.res
}

// Options returns the resolved options.
func (h *Handler) Options() Options {
	return h.opts
}

// Identity returns the request-scoped caller identity.
func (h *Handler) Identity() *Identity {
	return h.identity
}

// Session returns the request's session, loading it on first use.
func (h *Handler) Session() *sessions.Session {
	h.EnsureSession()
	return h.session
}

// EnsureSession loads the session once per request. Later calls, and calls
// from other handlers bound to the same request, reuse the same session.
func (h *Handler) EnsureSession() {
	if h.session != nil {
		return
	}
	if s := sessions.FromContext(h.req.Context()); s != nil {
		h.session = s
		return
	}

	s, err := h.store.Load(h.req)
	if err != nil {
		h.log.Warn().Err(err).Msg("discarding unreadable session cookie")
	}
	if s == nil {
		s = sessions.New(h.opts.Duration)
	}
	h.session = s
	h.req = h.req.WithContext(sessions.NewContext(h.req.Context(), s))
	h.res.BeforeWriteHeader(h.commitSession)
	h.debug().Str("session", s.ID).Bool("new", s.IsNew()).Msg("session loaded")
}

func (h *Handler) commitSession() {
	if !h.session.Dirty() {
		return
	}
	if err := h.store.Save(h.res.ResponseWriter, h.req, h.session); err != nil {
		h.log.Err(err).Str("session", h.session.ID).Msg("failed to save session")
	}
}

// GetSessionToken returns a copy of the token stored in the session, or nil.
func (h *Handler) GetSessionToken() *token.Token {
	h.EnsureSession()
	return h.session.Token.Clone()
}

// PersistToken writes t into the session and the request identity. A nil or
// empty t clears both. The profile is fetched only when none is cached; a
// failed fetch leaves an empty profile unless the fetcher rejects the token.
func (h *Handler) PersistToken(t *token.Token) error {
	h.EnsureSession()

	if !t.Valid() {
		h.session.Reset()
		h.identity.AccessToken = ""
		h.identity.User = nil
		h.debug().Msg("session cleared")
		return nil
	}

	projected := token.New(t.AccessToken, t.RefreshToken, t.Expires).Normalize(h.opts.TokenLifetime)

	var user map[string]any
	if !h.session.HasUser() {
		var err error
		user, err = h.fetchUser(projected.AccessToken)
		if apperrors.Is(err, apperrors.ErrInvalidToken) {
			return err
		}
		if err != nil {
			h.log.Warn().Err(err).Msg("failed to fetch user profile")
			user = map[string]any{}
		}
	}

	if h.session.Expired() {
		h.session.SetDuration(h.opts.Duration)
	}
	h.session.SetToken(projected)
	if user != nil {
		h.session.SetUser(user)
	}
	h.identity.AccessToken = projected.AccessToken
	h.identity.User = h.session.User
	h.debug().Str("expires", projected.Expires.String()).Msg("token persisted")
	return nil
}

func (h *Handler) fetchUser(accessToken string) (user map[string]any, err error) {
	if h.opts.FetchUser == nil {
		return map[string]any{}, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			user, err = nil, fmt.Errorf("fetch user panicked: %v", rec)
		}
	}()
	user, err = h.opts.FetchUser(accessToken, h.req, h.opts)
	if err == nil && user == nil {
		user = map[string]any{}
	}
	return user, err
}

// debug returns a debug event when logging is enabled and nil otherwise;
// zerolog treats a nil event as a no-op.
func (h *Handler) debug() *zerolog.Event {
	if !h.opts.Logging {
		return nil
	}
	return h.log.Debug()
}
