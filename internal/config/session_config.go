package config

import (
	"time"

	"github.com/jrsteele09/go-oauth-session/handler"
	"github.com/jrsteele09/go-oauth-session/sessions"
)

const (
	sessionNameEnvVar     = "SESSION_NAME"
	secretKeyEnvVar       = "SECRET_KEY"
	sessionDurationEnvVar = "SESSION_DURATION"
)

type Session struct{ src source }

var _ SessionConfig = Session{}

func (s Session) GetSessionName() string {
	return s.src.get(sessionNameEnvVar, handler.DefaultSessionName)
}

func (s Session) GetSecretKey() string {
	return s.src.get(secretKeyEnvVar, "")
}

func (s Session) GetSessionDuration() time.Duration {
	return s.src.getDuration(sessionDurationEnvVar, sessions.DefaultDuration)
}
