package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-oauth-session/internal/errors"
	"github.com/jrsteele09/go-oauth-session/provider"
	"github.com/jrsteele09/go-oauth-session/token"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "oauthClientID"
	testClientSecret = "oauthClientSecret"
	testRedirectURI  = "http://localhost:3000/auth/callback"
)

// tokenServer emulates a provider's token endpoint. Each grant type answers
// with the JSON produced by the matching handler.
func tokenServer(t *testing.T, respond func(form url.Values) (int, map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		status, body := respond(r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(host string) *provider.OAuth2Provider {
	return provider.NewOAuth2(provider.Config{
		Host:            host,
		AccessTokenPath: "/token2",
		ClientID:        testClientID,
		ClientSecret:    testClientSecret,
		RedirectURL:     testRedirectURI,
		Scopes:          []string{"profile"},
		DefaultLifetime: 10 * time.Minute,
	})
}

func callbackRequest(query string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/auth/callback?"+query, nil)
}

func TestOAuth2Provider_AuthCodeURL(t *testing.T) {
	p := newProvider("https://google.com/oauth")

	u, err := url.Parse(p.AuthCodeURL("opaque-state"))
	require.NoError(t, err)
	require.Equal(t, "google.com", u.Host)
	require.Equal(t, "/oauth/authorize", u.Path)
	require.Equal(t, "opaque-state", u.Query().Get("state"))
	require.Equal(t, testClientID, u.Query().Get("client_id"))
	require.Equal(t, testRedirectURI, u.Query().Get("redirect_uri"))
	require.Equal(t, "code", u.Query().Get("response_type"))
	require.Equal(t, "profile", u.Query().Get("scope"))
	require.Equal(t, "https://google.com/oauth/token2", p.OAuth2Config().Endpoint.TokenURL)
}

func TestOAuth2Provider_Exchange(t *testing.T) {
	t.Run("valid code", func(t *testing.T) {
		srv := tokenServer(t, func(form url.Values) (int, map[string]any) {
			require.Equal(t, "authorization_code", form.Get("grant_type"))
			require.Equal(t, "abc", form.Get("code"))
			return http.StatusOK, map[string]any{
				"access_token":  "accessToken",
				"refresh_token": "refreshToken",
				"token_type":    "bearer",
				"expires_in":    3600,
			}
		})

		tok, err := newProvider(srv.URL).Exchange(context.Background(), callbackRequest("code=abc&state=x"))
		require.NoError(t, err)
		require.Equal(t, "accessToken", tok.AccessToken)
		require.Equal(t, "refreshToken", tok.RefreshToken)
		require.InDelta(t, time.Hour.Seconds(), tok.ExpiresIn().Seconds(), 5)
	})

	t.Run("provider omits expiry", func(t *testing.T) {
		srv := tokenServer(t, func(url.Values) (int, map[string]any) {
			return http.StatusOK, map[string]any{"access_token": "accessToken", "token_type": "bearer"}
		})

		tok, err := newProvider(srv.URL).Exchange(context.Background(), callbackRequest("code=abc"))
		require.NoError(t, err)
		require.InDelta(t, (10 * time.Minute).Seconds(), tok.ExpiresIn().Seconds(), 5)
	})

	t.Run("provider rejects code", func(t *testing.T) {
		srv := tokenServer(t, func(url.Values) (int, map[string]any) {
			return http.StatusBadRequest, map[string]any{"error": "invalid_grant"}
		})

		_, err := newProvider(srv.URL).Exchange(context.Background(), callbackRequest("code=abc"))
		require.ErrorIs(t, err, apperrors.ErrTokenExchange)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := newProvider("http://unused").Exchange(context.Background(), callbackRequest("state=x"))
		require.ErrorIs(t, err, apperrors.ErrMissingCode)
	})

	t.Run("error parameter from provider", func(t *testing.T) {
		_, err := newProvider("http://unused").Exchange(context.Background(), callbackRequest("error=access_denied"))
		require.ErrorIs(t, err, apperrors.ErrProviderRejected)
	})
}

func TestOAuth2Provider_Refresh(t *testing.T) {
	t.Run("rotates tokens", func(t *testing.T) {
		srv := tokenServer(t, func(form url.Values) (int, map[string]any) {
			require.Equal(t, "refresh_token", form.Get("grant_type"))
			require.Equal(t, "refreshToken", form.Get("refresh_token"))
			return http.StatusOK, map[string]any{
				"access_token":  "newAccessToken",
				"refresh_token": "newRefreshToken",
				"token_type":    "bearer",
				"expires_in":    600,
			}
		})

		old := token.New("accessToken", "refreshToken", token.In(-time.Minute))
		tok, err := newProvider(srv.URL).Refresh(context.Background(), old)
		require.NoError(t, err)
		require.Equal(t, "newAccessToken", tok.AccessToken)
		require.Equal(t, "newRefreshToken", tok.RefreshToken)
		require.False(t, tok.Expired())
	})

	t.Run("keeps refresh token when provider does not rotate it", func(t *testing.T) {
		srv := tokenServer(t, func(url.Values) (int, map[string]any) {
			return http.StatusOK, map[string]any{"access_token": "newAccessToken", "token_type": "bearer", "expires_in": 600}
		})

		tok, err := newProvider(srv.URL).Refresh(context.Background(), token.New("accessToken", "refreshToken", token.Expiry{}))
		require.NoError(t, err)
		require.Equal(t, "refreshToken", tok.RefreshToken)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		srv := tokenServer(t, func(url.Values) (int, map[string]any) {
			return http.StatusUnauthorized, map[string]any{"error": "invalid_grant"}
		})

		_, err := newProvider(srv.URL).Refresh(context.Background(), token.New("accessToken", "refreshToken", token.Expiry{}))
		require.ErrorIs(t, err, apperrors.ErrTokenRefresh)
	})

	t.Run("no refresh token", func(t *testing.T) {
		_, err := newProvider("http://unused").Refresh(context.Background(), token.New("accessToken", "", token.Expiry{}))
		require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)
	})
}

func TestHTTPUserFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer accessToken" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Frodo Baggins","email":"frodo@bag.end"}`))
	}))
	defer srv.Close()

	fetch := provider.HTTPUserFetcher(srv.URL+"/api/v1/me", nil)

	t.Run("valid token", func(t *testing.T) {
		user, err := fetch(context.Background(), "accessToken")
		require.NoError(t, err)
		require.Equal(t, "frodo@bag.end", user["email"])
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := fetch(context.Background(), "nope")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestTestModeProvider(t *testing.T) {
	p := provider.NewTestMode("http://localhost:3000/auth/callback", time.Hour)

	u, err := url.Parse(p.AuthCodeURL("s"))
	require.NoError(t, err)
	require.Equal(t, "/auth/callback", u.Path)
	require.Equal(t, "s", u.Query().Get("state"))

	tok, err := p.Exchange(context.Background(), httptest.NewRequest(http.MethodGet, u.String(), nil))
	require.NoError(t, err)
	require.Equal(t, provider.TestAccessToken, tok.AccessToken)

	refreshed, err := p.Refresh(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, provider.TestRefreshToken, refreshed.RefreshToken)
}

// oidcIssuer serves a discovery document and a userinfo endpoint that only
// accepts "accessToken".
func oidcIssuer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/keys",
			"userinfo_endpoint":      srv.URL + "/userinfo",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer accessToken" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"frodo","name":"Frodo Baggins"}`))
	})
	return srv
}

func TestDiscover(t *testing.T) {
	srv := oidcIssuer(t)

	p, err := provider.Discover(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/authorize", p.Endpoint().AuthURL)
	require.Equal(t, srv.URL+"/token", p.Endpoint().TokenURL)

	_, err = provider.Discover(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
}

func TestOIDCUserFetcher(t *testing.T) {
	srv := oidcIssuer(t)
	p, err := provider.Discover(context.Background(), srv.URL)
	require.NoError(t, err)
	fetch := provider.OIDCUserFetcher(p)

	t.Run("valid token", func(t *testing.T) {
		user, err := fetch(context.Background(), "accessToken")
		require.NoError(t, err)
		require.Equal(t, "Frodo Baggins", user["name"])
	})

	t.Run("revoked token", func(t *testing.T) {
		_, err := fetch(context.Background(), "revoked-token")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}
