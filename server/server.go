package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-oauth-session/handler"
	"github.com/jrsteele09/go-oauth-session/internal/utils"
	"github.com/jrsteele09/go-oauth-session/provider"
	"github.com/jrsteele09/go-oauth-session/sessions"
	"github.com/jrsteele09/go-oauth-session/token"
)

// ErrorInvalidSession is the error code returned by the JSON routes.
const ErrorInvalidSession = "INVALID_SESSION"

const maxTokensBody = 64 << 10

// Router dispatches the auth routes and authenticates every other request
// before handing it on.
type Router struct {
	opts   Options
	stores *storeCache
}

// New creates a Router.
func New(opts Options) *Router {
	return &Router{opts: opts, stores: newStoreCache()}
}

// Middleware wraps next in the router, in ChainMiddleware form.
func (rt *Router) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt.dispatch(w, r, next)
	}
}

// Handler wraps next in the router.
func (rt *Router) Handler(next http.Handler) http.Handler {
	return rt.Middleware(next.ServeHTTP)
}

func (rt *Router) dispatch(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	opts := rt.opts.Resolve(r)
	store, err := rt.store(opts)
	if err != nil {
		log.Err(err).Str("path", r.URL.Path).Msg("session store unavailable")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h := handler.New(w, r, opts, rt.provider(r, opts), store)
	rw := h.ResponseWriter()
	defer rw.Commit()

	switch {
	case h.IsRoute(handler.RouteLogin):
		h.RedirectToOAuth(redirectParam(r))
	case h.IsRoute(handler.RouteCallback):
		h.AuthenticateCallbackToken()
	case h.IsRoute(handler.RouteLogout):
		h.Logout()
	case h.IsRoute(handler.RouteRefresh):
		writeToken(rw, h.UseRefreshToken())
	case h.IsRoute(handler.RouteTokens):
		accessToken, refreshToken, ok := readTokens(r)
		if !ok {
			writeToken(rw, nil)
			return
		}
		writeToken(rw, h.SetTokens(accessToken, refreshToken))
	default:
		h.CheckRequestAuthorization()
		// A rejected bearer token is answered with the logout redirect, not JSON.
		if rw.HeadersSent() {
			return
		}
		h.Authenticate()
		next(rw, h.Request())
	}
}

func (rt *Router) store(opts handler.Options) (sessions.Store, error) {
	if rt.opts.NewStore != nil {
		return rt.opts.NewStore(opts)
	}
	return rt.stores.get(opts)
}

func (rt *Router) provider(r *http.Request, opts handler.Options) provider.Provider {
	if rt.opts.NewProvider != nil {
		return rt.opts.NewProvider(r, opts)
	}
	callbackURL := utils.BaseURL(r) + handler.PathCallback
	if opts.TestMode {
		return provider.NewTestMode(callbackURL, opts.TokenLifetime)
	}
	return provider.NewOAuth2(provider.Config{
		Host:            opts.OAuthHost,
		AuthorizePath:   opts.AuthorizePath,
		AccessTokenPath: opts.AccessTokenPath,
		Endpoint:        rt.opts.Endpoint,
		ClientID:        opts.ClientID,
		ClientSecret:    opts.ClientSecret,
		RedirectURL:     callbackURL,
		Scopes:          opts.Scopes,
		DefaultLifetime: opts.TokenLifetime,
		HTTPClient:      rt.opts.HTTPClient,
	})
}

func redirectParam(r *http.Request) string {
	if u := r.URL.Query().Get("redirect-url"); u != "" {
		return u
	}
	return handler.DefaultRedirectURL
}

type tokenResponse struct {
	AccessToken string       `json:"accessToken"`
	Expires     token.Expiry `json:"expires"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type tokensRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func writeToken(w http.ResponseWriter, t *token.Token) {
	if !t.Valid() {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrorInvalidSession})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: t.AccessToken, Expires: t.Expires})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to write JSON response")
	}
}

// readTokens accepts a JSON body or form values.
func readTokens(r *http.Request) (accessToken, refreshToken string, ok bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body tokensRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxTokensBody)).Decode(&body); err != nil {
			log.Warn().Err(err).Msg("unreadable token handoff body")
			return "", "", false
		}
		return strings.TrimSpace(body.AccessToken), strings.TrimSpace(body.RefreshToken), true
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxTokensBody)
	if err := r.ParseForm(); err != nil {
		log.Warn().Err(err).Msg("unreadable token handoff form")
		return "", "", false
	}
	return r.FormValue("accessToken"), r.FormValue("refreshToken"), true
}
