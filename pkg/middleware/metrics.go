package middleware

import (
	"net/http"
	"slotbook/pkg/metrics"
	"time"
)

// RouteResolver maps a request onto its route pattern so metric labels stay
// bounded.
type RouteResolver func(r *http.Request) string

func Metrics(m *metrics.Metrics, route RouteResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			name := "unmatched"
			if route != nil {
				if resolved := route(r); resolved != "" {
					name = resolved
				}
			}
			m.ObserveHTTP(r.Method, name, wrapped.statusCode, time.Since(start))
		})
	}
}
