package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/heartmarshall/pokecatalog/internal/observe"
)

// RouteFunc names the route that will serve r, for low-cardinality labels.
type RouteFunc func(r *http.Request) string

// Metrics records request latency by method, route and status.
func Metrics(m *observe.Metrics, route RouteFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			pattern := route(r)
			if pattern == "" {
				pattern = "unmatched"
			}
			m.HTTPRequestDuration.Record(r.Context(), time.Since(start).Seconds(),
				metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.String("route", pattern),
					attribute.String("status", strconv.Itoa(sw.status)),
				),
			)
		})
	}
}
