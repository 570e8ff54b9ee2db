package server

import (
	"net/http"
	"runtime/debug"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

// Middleware is the shape every stage of the chain has.
type Middleware = func(http.HandlerFunc) http.HandlerFunc

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...Middleware) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// StandardMiddleware is the chain placed in front of the router.
func StandardMiddleware(env string, cors CorsPolicy, mw ...Middleware) []Middleware {
	chained := []Middleware{
		LoggingMiddleware(env),
		RecoverMiddleware,
		FrameSecurityMiddleware,
		CorsMiddleware(cors),
	}
	return append(chained, mw...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// LoggingMiddleware writes one access log line per request. Outside DEV,
// requests that did not fail with a 5xx are logged at debug.
func LoggingMiddleware(env string) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			event := log.Debug()
			if env == EnvDev || rec.status >= http.StatusInternalServerError {
				event = log.Info()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(start)).
				Msg(methodLabel(r.Method, env))
		}
	}
}

// RecoverMiddleware turns a panic further down the chain into a 500.
func RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().
				Interface("panic", rec).
				Str("path", r.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()
		next(w, r)
	}
}

func FrameSecurityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Prevent embedding on other sites
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'self'")
		next(w, r)
	}
}

// CorsPolicy lists the cross-origin callers allowed to use the JSON routes
// with credentials. "*" allows any origin without credentials.
type CorsPolicy struct {
	AllowedOrigins []string
	AllowedMethods string
	AllowedHeaders string
}

func (p CorsPolicy) allows(origin string) bool {
	return slices.Contains(p.AllowedOrigins, origin)
}

func CorsMiddleware(policy CorsPolicy) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// No Origin header = same-origin request, no CORS headers needed
			if origin == "" {
				next(w, r)
				return
			}

			isAllowed := policy.allows(origin)
			isWildcard := policy.allows("*")

			if isAllowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			} else if isWildcard {
				// Don't set Allow-Credentials with wildcard
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			if r.Method == http.MethodOptions {
				if isAllowed || isWildcard {
					w.Header().Set("Access-Control-Allow-Methods", policy.AllowedMethods)
					w.Header().Set("Access-Control-Allow-Headers", policy.AllowedHeaders)
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
				// If not allowed the browser blocks the actual request
				w.WriteHeader(http.StatusOK)
				return
			}

			next(w, r)
		}
	}
}
