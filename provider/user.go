package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/go-oauth-session/internal/errors"
)

// maxProfileBytes bounds how much of a profile response is read.
const maxProfileBytes = 1 << 20

// HTTPUserFetcher GETs profileURL with the access token as a bearer
// credential and decodes the JSON object it returns.
func HTTPUserFetcher(profileURL string, client *http.Client) UserFetcher {
	return func(ctx context.Context, accessToken string) (map[string]any, error) {
		if client != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
		}
		httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: accessToken,
			TokenType:   "Bearer",
		}))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
		if err != nil {
			return nil, errors.Wrap(err, "build profile request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "fetch profile")
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("fetch profile: status %d: %w", resp.StatusCode, apperrors.ErrInvalidToken)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("fetch profile: unexpected status %d", resp.StatusCode)
		}

		var profile map[string]any
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes)).Decode(&profile); err != nil {
			return nil, errors.Wrap(err, "decode profile")
		}
		return profile, nil
	}
}

// Discover resolves an OIDC issuer's endpoints. The returned provider can be
// passed to OIDCUserFetcher and its Endpoint() used in Config.Endpoint.
func Discover(ctx context.Context, issuer string) (*oidc.Provider, error) {
	p, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.Wrapf(err, "discover issuer %s", issuer)
	}
	return p, nil
}

// OIDCUserFetcher loads the profile from the issuer's userinfo endpoint. As
// with HTTPUserFetcher, a 401 or 403 is reported as apperrors.ErrInvalidToken
// so a revoked token is not mistaken for a missing profile.
func OIDCUserFetcher(p *oidc.Provider) UserFetcher {
	endpoint := p.UserInfoEndpoint()
	if endpoint == "" {
		return func(context.Context, string) (map[string]any, error) {
			return nil, errors.New("issuer does not publish a userinfo endpoint")
		}
	}
	return HTTPUserFetcher(endpoint, nil)
}
