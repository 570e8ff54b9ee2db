package config

import (
	"time"

	"github.com/jrsteele09/go-oauth-session/provider"
	"github.com/jrsteele09/go-oauth-session/token"
)

const (
	oauthHostEnvVar         = "OAUTH_HOST"
	oauthIssuerEnvVar       = "OAUTH_ISSUER"
	oauthAuthorizeEnvVar    = "OAUTH_AUTHORIZE_PATH"
	oauthTokenPathEnvVar    = "OAUTH_TOKEN_PATH"
	oauthClientIDEnvVar     = "OAUTH_CLIENT_ID"
	oauthClientSecretEnvVar = "OAUTH_CLIENT_SECRET"
	oauthScopesEnvVar       = "OAUTH_SCOPES"
	oauthUserInfoEnvVar     = "OAUTH_USERINFO_URL"
	oauthTokenLifetimeVar   = "OAUTH_TOKEN_LIFETIME"
)

type OAuth struct{ src source }

var _ OAuthConfig = OAuth{}

func (o OAuth) GetOAuthHost() string {
	return o.src.get(oauthHostEnvVar, "")
}

// GetOAuthIssuer is an OIDC issuer; when set its discovered endpoints
// replace the host and paths.
func (o OAuth) GetOAuthIssuer() string {
	return o.src.get(oauthIssuerEnvVar, "")
}

func (o OAuth) GetAuthorizePath() string {
	return o.src.get(oauthAuthorizeEnvVar, provider.DefaultAuthorizePath)
}

func (o OAuth) GetAccessTokenPath() string {
	return o.src.get(oauthTokenPathEnvVar, provider.DefaultAccessTokenPath)
}

func (o OAuth) GetClientID() string {
	return o.src.get(oauthClientIDEnvVar, "")
}

func (o OAuth) GetClientSecret() string {
	return o.src.get(oauthClientSecretEnvVar, "")
}

func (o OAuth) GetScopes() []string {
	return o.src.getList(oauthScopesEnvVar)
}

func (o OAuth) GetUserInfoURL() string {
	return o.src.get(oauthUserInfoEnvVar, "")
}

func (o OAuth) GetDefaultTokenLifetime() time.Duration {
	return o.src.getDuration(oauthTokenLifetimeVar, token.DefaultLifetime)
}
