package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/go-oauth-session/internal/errors"
	"github.com/jrsteele09/go-oauth-session/token"
)

const (
	DefaultAuthorizePath   = "/authorize"
	DefaultAccessTokenPath = "/token"
)

// Config describes one OAuth2 client registration.
type Config struct {
	// Host is the provider base URL, e.g. "https://accounts.example.com".
	Host            string
	AuthorizePath   string
	AccessTokenPath string

	// Endpoint overrides Host and the paths, e.g. with the result of OIDC discovery.
	Endpoint *oauth2.Endpoint

	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// DefaultLifetime applies when the provider omits expires_in.
	DefaultLifetime time.Duration
	HTTPClient      *http.Client
}

// OAuth2Provider implements Provider on golang.org/x/oauth2.
type OAuth2Provider struct {
	config     *oauth2.Config
	lifetime   time.Duration
	httpClient *http.Client
}

var _ Provider = (*OAuth2Provider)(nil)

// NewOAuth2 builds a provider client from cfg.
func NewOAuth2(cfg Config) *OAuth2Provider {
	endpoint := oauth2.Endpoint{
		AuthURL:  joinURL(cfg.Host, orDefault(cfg.AuthorizePath, DefaultAuthorizePath)),
		TokenURL: joinURL(cfg.Host, orDefault(cfg.AccessTokenPath, DefaultAccessTokenPath)),
	}
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	lifetime := cfg.DefaultLifetime
	if lifetime <= 0 {
		lifetime = token.DefaultLifetime
	}
	return &OAuth2Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       append([]string(nil), cfg.Scopes...),
		},
		lifetime:   lifetime,
		httpClient: cfg.HTTPClient,
	}
}

// OAuth2Config exposes the underlying configuration.
func (p *OAuth2Provider) OAuth2Config() *oauth2.Config {
	return p.config
}

func (p *OAuth2Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *OAuth2Provider) Exchange(ctx context.Context, r *http.Request) (*token.Token, error) {
	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		return nil, apperrors.Wrapf(apperrors.ErrProviderRejected, "%s: %s", errParam, query.Get("error_description"))
	}
	code := query.Get("code")
	if code == "" {
		return nil, apperrors.ErrMissingCode
	}
	t, err := p.config.Exchange(p.context(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenExchange, err)
	}
	return p.fromOAuth2(t)
}

func (p *OAuth2Provider) Refresh(ctx context.Context, t *token.Token) (*token.Token, error) {
	if !t.CanRefresh() {
		return nil, apperrors.ErrNoRefreshToken
	}
	// An expiry in the past forces the token source to hit the token endpoint.
	src := p.config.TokenSource(p.context(ctx), &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Unix(1, 0),
	})
	refreshed, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenRefresh, err)
	}
	return p.fromOAuth2(refreshed)
}

func (p *OAuth2Provider) context(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func (p *OAuth2Provider) fromOAuth2(t *oauth2.Token) (*token.Token, error) {
	if t == nil || t.AccessToken == "" {
		return nil, apperrors.ErrInvalidToken
	}
	expires := token.At(t.Expiry)
	if expires.IsZero() {
		// Some providers send an absolute "expires" instead of expires_in.
		if parsed, err := token.ParseExpiry(t.Extra("expires")); err == nil {
			expires = parsed
		}
	}
	return token.New(t.AccessToken, t.RefreshToken, expires).Normalize(p.lifetime), nil
}

func joinURL(host, path string) string {
	if host == "" {
		return path
	}
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(path, "/")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
