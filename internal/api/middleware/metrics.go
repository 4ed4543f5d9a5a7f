package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// MetricsCollector counts requests and errors in total and per route.
type MetricsCollector struct {
	requestCount *atomic.Int64
	errorCount   *atomic.Int64

	mu     sync.Mutex
	routes map[string]int64
}

func NewMetricsCollector(requestCount, errorCount *atomic.Int64) *MetricsCollector {
	return &MetricsCollector{
		requestCount: requestCount,
		errorCount:   errorCount,
		routes:       make(map[string]int64),
	}
}

// Middleware counts requests and errors (4xx and 5xx).
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.requestCount.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode >= 400 {
			mc.errorCount.Add(1)
		}

		key := r.Method + " " + routePattern(r)
		mc.mu.Lock()
		mc.routes[key]++
		mc.mu.Unlock()
	})
}

// Routes returns a copy of the per-route request counts.
func (mc *MetricsCollector) Routes() map[string]int64 {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	out := make(map[string]int64, len(mc.routes))
	for k, v := range mc.routes {
		out[k] = v
	}
	return out
}
