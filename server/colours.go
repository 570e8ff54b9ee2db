package server

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-oauth-session/handler"
)

// EnvDev is the environment name that turns on coloured route output.
const EnvDev = "DEV"

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var methodColors = map[string]string{
	"GET":     Green,
	"POST":    Blue,
	"PUT":     Cyan,
	"DELETE":  Yellow,
	"PATCH":   Magenta,
	"OPTIONS": Red,
}

func methodLabel(method, env string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if env != EnvDev {
		return paddedMethod
	}
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	return color + paddedMethod + ResetColor
}

// LogRoutes prints the routes the middleware answers itself. Only in DEV.
func LogRoutes(env string) {
	if env != EnvDev {
		return
	}
	for _, route := range []handler.Route{
		handler.RouteLogin,
		handler.RouteCallback,
		handler.RouteLogout,
		handler.RouteRefresh,
		handler.RouteTokens,
	} {
		log.Info().Str("route", string(route)).Msgf("[%s] %s", methodLabel("ANY", env), handler.RoutePath(route))
	}
}
