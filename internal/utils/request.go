package utils

import (
	"net/http"
	"strings"
)

// Scheme determines the scheme (http/https) the client used, honouring a
// terminating proxy's X-Forwarded-Proto.
func Scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		// A chain of proxies appends; the first hop is the client's.
		return strings.ToLower(strings.TrimSpace(strings.SplitN(scheme, ",", 2)[0]))
	}
	return "http"
}

// BaseURL returns scheme://host for the request.
func BaseURL(r *http.Request) string {
	return Scheme(r) + "://" + r.Host
}
