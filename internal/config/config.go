package config

import (
	"time"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetTestMode() bool
	GetLogging() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type OAuthConfig interface {
	GetOAuthHost() string
	GetOAuthIssuer() string
	GetAuthorizePath() string
	GetAccessTokenPath() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
	GetUserInfoURL() string
	GetDefaultTokenLifetime() time.Duration
}

type SessionConfig interface {
	GetSessionName() string
	GetSecretKey() string
	GetSessionDuration() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Session
}

// New reads configuration from the environment only.
func New() Config {
	return newConfig(source{})
}

// Load reads configuration from the environment, falling back to the YAML
// file at path for anything the environment leaves unset.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newConfig(source{file: f.values()}), nil
}

func newConfig(src source) Config {
	return mainConfig{
		EnvVars: EnvVars{src},
		Cors:    Cors{src},
		OAuth:   OAuth{src},
		Session: Session{src},
	}
}
