package middleware

import (
	"net/http"
	"time"
)

// AccessLog логирует каждый запрос после его обработки
func AccessLog(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			log.Info("http request: request_id=%s, method=%s, path=%s, status=%d, bytes=%d, duration_ms=%d",
				GetRequestID(r.Context()), r.Method, r.URL.Path, rec.Status(), rec.bytes, time.Since(start).Milliseconds())
		})
	}
}
