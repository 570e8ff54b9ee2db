package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	testModeEnvVar = "TEST_MODE"
	loggingEnvVar  = "LOGGING"
)

// source resolves a setting from the environment, then the config file.
type source struct {
	file map[string]string
}

func (s source) get(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value := s.file[envVar]; value != "" {
		return value
	}
	return defaultValue
}

func (s source) getBool(envVar string, defaultValue bool) bool {
	raw := s.get(envVar, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn().Str("var", envVar).Str("value", raw).Msg("not a boolean, using default")
		return defaultValue
	}
	return v
}

// getDuration accepts Go durations ("90m") or a number of seconds.
func (s source) getDuration(envVar string, defaultValue time.Duration) time.Duration {
	raw := s.get(envVar, "")
	if raw == "" {
		return defaultValue
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("var", envVar).Str("value", raw).Msg("not a duration, using default")
		return defaultValue
	}
	return d
}

func (s source) getList(envVar string) []string {
	raw := s.get(envVar, "")
	if raw == "" {
		return nil
	}
	return strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
}

type EnvVars struct{ src source }

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.src.get(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.src.get(appNameVar, "Go OAuth Session")
}

func (e EnvVars) GetEnv() string {
	return e.src.get(envVar, "DEV")
}

func (e EnvVars) GetTestMode() bool {
	return e.src.getBool(testModeEnvVar, false)
}

func (e EnvVars) GetLogging() bool {
	return e.src.getBool(loggingEnvVar, false)
}

// GetEnv returns the environment variable or defaultValue when it is unset.
func GetEnv(envVar, defaultValue string) string {
	return source{}.get(envVar, defaultValue)
}
