package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	ports "yatube/internal/domain/ports/output"
)

// Recovery turns a panic in a handler into a 500 response.
func Recovery(log ports.Logger, onPanic http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.Error("Recovered from panic",
						slog.String("path", r.URL.Path),
						slog.String("panic", fmt.Sprint(p)),
						slog.String("stack", string(debug.Stack())))
					onPanic.ServeHTTP(w, r)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
