package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/solshare/feed-ranker/internal/api/respond"
	"github.com/solshare/feed-ranker/internal/metrics"
)

// internalKeyHeader carries the shared secret on backend-to-service calls.
const internalKeyHeader = "X-Internal-API-Key"

// AuthMiddleware rejects requests missing the internal API key. An empty
// configured key disables the check (local development).
func AuthMiddleware(apiKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey != "" {
				got := r.Header.Get(internalKeyHeader)
				if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
					respond.WriteUnauthorized(w, "invalid or missing internal API key")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware records request latency per route and status.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
