package middleware

import (
	"context"
	"net/http"
	"time"

	"studio/internal/infra"
)

type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

type logFields struct {
	sessionID string
}

type logFieldsKey struct{}

// annotateSession records the session id for the request log line. Inner
// middleware cannot change the request seen by Logger, so the id travels
// through a holder placed in the context.
func annotateSession(ctx context.Context, id string) {
	if f, ok := ctx.Value(logFieldsKey{}).(*logFields); ok {
		f.sessionID = id
	}
}

// Logger emits one line per request. Requests that end in a server error
// are logged at error level.
func Logger(l *infra.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			fields := &logFields{}
			next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), logFieldsKey{}, fields)))

			evt := l.Info()
			if rw.status >= http.StatusInternalServerError {
				evt = l.Error()
			}
			evt = evt.
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Int("bytes", rw.bytes).
				Dur("duration", time.Since(start)).
				Str("ip", ClientIP(r))
			if fields.sessionID != "" {
				evt = evt.Str("session_id", fields.sessionID)
			}
			evt.Msg("http: request")
		})
	}
}
