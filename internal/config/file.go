package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the YAML form of the configuration. Environment variables take
// precedence over anything set here.
type File struct {
	Port     string `yaml:"port"`
	AppName  string `yaml:"appName"`
	Env      string `yaml:"env"`
	TestMode *bool  `yaml:"testMode"`
	Logging  *bool  `yaml:"logging"`

	OAuth struct {
		Host            string   `yaml:"host"`
		Issuer          string   `yaml:"issuer"`
		AuthorizePath   string   `yaml:"authorizePath"`
		AccessTokenPath string   `yaml:"accessTokenPath"`
		ClientID        string   `yaml:"clientId"`
		ClientSecret    string   `yaml:"clientSecret"`
		Scopes          []string `yaml:"scopes"`
		UserInfoURL     string   `yaml:"userInfoUrl"`
		TokenLifetime   string   `yaml:"tokenLifetime"`
	} `yaml:"oauth"`

	Session struct {
		Name      string `yaml:"name"`
		SecretKey string `yaml:"secretKey"`
		Duration  string `yaml:"duration"`
	} `yaml:"session"`

	Cors struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
}

// ReadFile parses the YAML file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return ParseFile(data)
}

// ParseFile parses YAML configuration. Unknown keys are rejected.
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parse config")
	}
	return &f, nil
}

// values flattens the file onto the environment variable names.
func (f *File) values() map[string]string {
	v := map[string]string{
		portEnvVar:              f.Port,
		appNameVar:              f.AppName,
		envVar:                  f.Env,
		oauthHostEnvVar:         f.OAuth.Host,
		oauthIssuerEnvVar:       f.OAuth.Issuer,
		oauthAuthorizeEnvVar:    f.OAuth.AuthorizePath,
		oauthTokenPathEnvVar:    f.OAuth.AccessTokenPath,
		oauthClientIDEnvVar:     f.OAuth.ClientID,
		oauthClientSecretEnvVar: f.OAuth.ClientSecret,
		oauthScopesEnvVar:       strings.Join(f.OAuth.Scopes, ","),
		oauthUserInfoEnvVar:     f.OAuth.UserInfoURL,
		oauthTokenLifetimeVar:   f.OAuth.TokenLifetime,
		sessionNameEnvVar:       f.Session.Name,
		secretKeyEnvVar:         f.Session.SecretKey,
		sessionDurationEnvVar:   f.Session.Duration,
		corsOriginsEnvVar:       strings.Join(f.Cors.AllowedOrigins, ","),
	}
	if f.TestMode != nil {
		v[testModeEnvVar] = strconv.FormatBool(*f.TestMode)
	}
	if f.Logging != nil {
		v[loggingEnvVar] = strconv.FormatBool(*f.Logging)
	}
	return v
}
