package main

import (
	"context"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-oauth-session/gate"
	"github.com/jrsteele09/go-oauth-session/internal/config"
	"github.com/jrsteele09/go-oauth-session/provider"
	"github.com/jrsteele09/go-oauth-session/server"
)

// newOptions maps the process configuration onto the OAuth middleware. When
// an issuer is configured its endpoints and userinfo come from discovery.
func newOptions(ctx context.Context, c config.Config) (server.Options, error) {
	opts := server.Options{
		OAuthHost:       server.Static(c.GetOAuthHost()),
		AuthorizePath:   server.Static(c.GetAuthorizePath()),
		AccessTokenPath: server.Static(c.GetAccessTokenPath()),
		ClientID:        server.Static(c.GetClientID()),
		ClientSecret:    server.Static(c.GetClientSecret()),
		Scopes:          server.Static(c.GetScopes()),
		SessionName:     server.Static(c.GetSessionName()),
		SecretKey:       server.Static(c.GetSecretKey()),
		Duration:        server.Static(c.GetSessionDuration()),
		TokenLifetime:   server.Static(c.GetDefaultTokenLifetime()),
		TestMode:        server.Static(c.GetTestMode()),
		Logging:         server.Static(c.GetLogging()),
		OnLogout: func(_ http.ResponseWriter, r *http.Request, redirectURL string) error {
			log.Info().Str("remote", r.RemoteAddr).Str("redirect", redirectURL).Msg("User logged out")
			return nil
		},
	}

	if c.GetTestMode() {
		log.Warn().Msg("Test mode enabled, logins are not checked")
		return opts, nil
	}

	if issuer := c.GetOAuthIssuer(); issuer != "" {
		p, err := provider.Discover(ctx, issuer)
		if err != nil {
			return server.Options{}, err
		}
		endpoint := p.Endpoint()
		opts.Endpoint = &endpoint
		opts.FetchUser = server.FetchUserWith(provider.OIDCUserFetcher(p))
	}
	if userInfoURL := c.GetUserInfoURL(); userInfoURL != "" {
		opts.FetchUser = server.FetchUserWith(provider.HTTPUserFetcher(userInfoURL, nil))
	}
	return opts, nil
}

var routes = []gate.Route{
	{Name: "home", Path: "/", RequiresAuth: gate.Optional},
	{Name: "account", Path: "/account", RequiresAuth: gate.Required},
}

// newApp builds the demo site behind the standard middleware, the OAuth
// router and the route gate.
func newApp(c config.Config, opts server.Options) http.Handler {
	page := pageRenderer(c.GetAppName())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /account", page("account.html"))
	mux.HandleFunc("GET /{$}", page("index.html"))

	router := server.New(opts)
	g := gate.New(routes...)
	cors := server.CorsPolicy{
		AllowedOrigins: c.GetAllowedOrigins().List(),
		AllowedMethods: c.GetAllowedMethods(),
		AllowedHeaders: c.GetAllowedHeaders(),
	}

	mw := server.StandardMiddleware(c.GetEnv(), cors, router.Middleware, g.Middleware)
	return server.ChainMiddleware(mux.ServeHTTP, mw...)
}

type pageData struct {
	AppName string
	State   gate.ClientState
	StateJS template.JS
	Actions gate.Actions
}

func pageRenderer(appName string) func(name string) http.HandlerFunc {
	return func(name string) http.HandlerFunc {
		tmpl, err := parseTemplate(name)
		if err != nil {
			panic("Failed to parse " + name + " template: " + err.Error())
		}
		return func(w http.ResponseWriter, r *http.Request) {
			state, ok := gate.FromContext(r.Context())
			if !ok {
				state = gate.Hydrate(r)
			}
			js, err := state.JSON()
			if err != nil {
				log.Err(err).Msg("Failed to encode client state")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := tmpl.ExecuteTemplate(w, "layout", pageData{
				AppName: appName,
				State:   state,
				StateJS: js,
				Actions: gate.ActionsFor(r),
			}); err != nil {
				log.Err(err).Str("template", name).Msg("Failed to render page")
			}
		}
	}
}
