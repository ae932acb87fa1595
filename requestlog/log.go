// Package requestlog logs one record per served request, tagged with the
// request's correlation ID.
package requestlog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lstoll/correlation"
)

// loggingResponseWriter wraps the standard http.ResponseWriter to capture status and bytes written.
type loggingResponseWriter struct {
	http.ResponseWriter
	status       int
	bytesWritten int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	if lrw.status == 0 {
		lrw.status = code
	}
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}

// RequestLogger logs each request after it has been served. It must be
// installed inside a correlation.Middleware to see the correlation ID.
type RequestLogger struct {
	// Logger to write to. If nil, slog.Default is used.
	Logger *slog.Logger
	// PropertyName is the key the correlation ID is logged under. Defaults to
	// correlation.DefaultLogPropertyName.
	PropertyName string
}

func (rl *RequestLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		status := lrw.status
		if status == 0 {
			status = http.StatusOK
		}

		l := rl.Logger
		if l == nil {
			l = slog.Default()
		}

		attrs := []slog.Attr{
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("request_method", r.Method),
			slog.String("request_url", r.URL.Path),
			slog.String("request_protocol", r.Proto),
			slog.Int("status", status),
			slog.Int("bytes_sent", lrw.bytesWritten),
			slog.String("referer", r.Referer()),
			slog.String("user_agent", r.UserAgent()),
			slog.Duration("duration", duration),
		}
		if id, ok := correlation.FromContext(r.Context()); ok {
			attrs = append(attrs, slog.String(rl.propertyName(), id))
		}

		l.LogAttrs(r.Context(), slog.LevelInfo, "Request Served", attrs...)
	})
}

func (rl *RequestLogger) propertyName() string {
	if rl.PropertyName == "" {
		return correlation.DefaultLogPropertyName
	}
	return rl.PropertyName
}
