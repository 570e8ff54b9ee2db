package handler

import (
	"net/http"
)

// ResponseWriter tracks whether headers have gone out and runs hooks just
// before they do, which is the last moment a Set-Cookie can be added.
type ResponseWriter struct {
	http.ResponseWriter
	wroteHeader bool
	hooks       []func()
}

// NewResponseWriter wraps w. Wrapping an already wrapped writer returns it
// unchanged so hooks registered by an outer stage are kept.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w}
}

// BeforeWriteHeader registers fn to run once, right before the status line.
func (w *ResponseWriter) BeforeWriteHeader(fn func()) {
	w.hooks = append(w.hooks, fn)
}

// HeadersSent reports whether a status has been written.
func (w *ResponseWriter) HeadersSent() bool {
	return w.wroteHeader
}

func (w *ResponseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.runHooks()
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Commit runs pending hooks when the pipeline finished without writing, so
// the implicit 200 still carries the session cookie.
func (w *ResponseWriter) Commit() {
	if !w.wroteHeader {
		w.runHooks()
	}
}

func (w *ResponseWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *ResponseWriter) runHooks() {
	hooks := w.hooks
	w.hooks = nil
	for _, fn := range hooks {
		fn()
	}
}
