package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-oauth-session/internal/config"
)

const sampleFile = `
port: "9090"
appName: Shire Portal
testMode: true
oauth:
  host: https://accounts.shire.test
  clientId: hobbiton
  scopes: [openid, profile]
  tokenLifetime: 30m
session:
  name: shireSession
  secretKey: from-file
  duration: "3600"
cors:
  allowedOrigins: [https://app.shire.test]
`

func clearEnv(t *testing.T) {
	for _, v := range []string{"PORT", "ENV", "SESSION_NAME", "SESSION_DURATION", "SECRET_KEY", "OAUTH_SCOPES", "OAUTH_AUTHORIZE_PATH", "OAUTH_TOKEN_PATH", "OAUTH_TOKEN_LIFETIME", "TEST_MODE", "LOGGING", "APP_NAME"} {
		t.Setenv(v, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "nuxtSession", c.GetSessionName())
	require.Equal(t, 24*time.Hour, c.GetSessionDuration())
	require.Equal(t, "/authorize", c.GetAuthorizePath())
	require.Equal(t, "/token", c.GetAccessTokenPath())
	require.Equal(t, time.Hour, c.GetDefaultTokenLifetime())
	require.Empty(t, c.GetScopes())
	require.False(t, c.GetTestMode())
	require.False(t, c.GetLogging())
}

func TestEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":3000")
	t.Setenv("OAUTH_SCOPES", "openid, email")
	t.Setenv("SESSION_DURATION", "90m")
	t.Setenv("LOGGING", "true")
	t.Setenv("TEST_MODE", "nope")

	c := config.New()
	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, []string{"openid", "email"}, c.GetScopes())
	require.Equal(t, 90*time.Minute, c.GetSessionDuration())
	require.True(t, c.GetLogging())
	require.False(t, c.GetTestMode())
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0o600))

	t.Run("file values", func(t *testing.T) {
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, ":9090", c.GetPort())
		require.Equal(t, "Shire Portal", c.GetAppName())
		require.True(t, c.GetTestMode())
		require.Equal(t, "https://accounts.shire.test", c.GetOAuthHost())
		require.Equal(t, "hobbiton", c.GetClientID())
		require.Equal(t, []string{"openid", "profile"}, c.GetScopes())
		require.Equal(t, 30*time.Minute, c.GetDefaultTokenLifetime())
		require.Equal(t, "shireSession", c.GetSessionName())
		require.Equal(t, time.Hour, c.GetSessionDuration())
		require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://app.shire.test"))
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "from-env")
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "from-env", c.GetSecretKey())
	})

	t.Run("no path", func(t *testing.T) {
		c, err := config.Load("")
		require.NoError(t, err)
		require.Equal(t, ":8080", c.GetPort())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}

func TestParseFile(t *testing.T) {
	_, err := config.ParseFile([]byte("unknownKey: 1\n"))
	require.Error(t, err)

	f, err := config.ParseFile(nil)
	require.NoError(t, err)
	require.Empty(t, f.Port)
}
