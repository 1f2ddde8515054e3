package middleware

import (
	"log/slog"
	"net/http"
	"time"

	ports "yatube/internal/domain/ports/output"
)

func Logging(log ports.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.RequestURI()),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
			}
			if user := UserFromContext(r.Context()); user != nil {
				attrs = append(attrs, slog.Int64("user_id", user.ID))
			}
			if rec.status >= http.StatusInternalServerError {
				log.Error("HTTP request failed", attrs...)
				return
			}
			log.Info("HTTP request", attrs...)
		})
	}
}
