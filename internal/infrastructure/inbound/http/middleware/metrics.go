package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	ports "yatube/internal/domain/ports/output"
)

// Metrics records request counts and durations labelled by the matched
// route template, so path variables do not explode label cardinality.
func Metrics(metrics ports.MetricsProvider) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			status := strconv.Itoa(rec.status)
			metrics.IncrementHTTPRequests(route, status)
			metrics.RecordHTTPRequestDuration(route, status, time.Since(start))
		})
	}
}
