package handler

import "strings"

// Route names the special paths the router short-circuits.
type Route string

const (
	RouteNone     Route = ""
	RouteLogin    Route = "login"
	RouteCallback Route = "callback"
	RouteLogout   Route = "logout"
	RouteRefresh  Route = "refresh"
	RouteTokens   Route = "tokens"
)

// Route path prefixes
const (
	PathLogin    = "/auth/login"
	PathCallback = "/auth/callback"
	PathLogout   = "/auth/logout"
	PathRefresh  = "/auth/refresh"
	PathTokens   = "/auth/tokens"
)

// routeTable is checked in order.
var routeTable = []struct {
	name   Route
	prefix string
}{
	{RouteLogin, PathLogin},
	{RouteCallback, PathCallback},
	{RouteLogout, PathLogout},
	{RouteRefresh, PathRefresh},
	{RouteTokens, PathTokens},
}

// Classify maps a request path to its route by prefix.
func Classify(path string) Route {
	for _, r := range routeTable {
		if strings.HasPrefix(path, r.prefix) {
			return r.name
		}
	}
	return RouteNone
}

// RoutePath returns the path prefix of name, or "" for RouteNone.
func RoutePath(name Route) string {
	for _, r := range routeTable {
		if r.name == name {
			return r.prefix
		}
	}
	return ""
}
