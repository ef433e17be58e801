// Package middleware provides HTTP middleware for request logging and
// prometheus metrics.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs every request with method, path, status, and duration.
// Domain rejections surface as 4xx and log at Info; only transport-level
// failures are 5xx and log at Warn.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if ww.Status() >= http.StatusInternalServerError {
			slog.Warn("Request failed", attrs...)
		} else {
			slog.Info("Request completed", attrs...)
		}
	})
}
