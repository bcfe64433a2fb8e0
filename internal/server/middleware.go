package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/typetour/internal/logging"
)

// requestLogger logs one line per request through the structured logger.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []interface{}{
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"remote", r.RemoteAddr,
				}
				if id := middleware.GetReqID(r.Context()); id != "" {
					fields = append(fields, "request_id", id)
				}
				if status >= http.StatusInternalServerError {
					logger.Warn(r.Context(), nil, "HTTP request", fields...)
					return
				}
				logger.Debug(r.Context(), "HTTP request", fields...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
