package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the application-specific Prometheus collectors.
var Registry = prometheus.NewRegistry()

var (
	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "techsalle",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "techsalle",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "techsalle",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	inventoryWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "techsalle",
			Subsystem: "inventory",
			Name:      "writes_total",
			Help:      "Successful inventory writes by entity and operation.",
		},
		[]string{"entity", "op"},
	)

	rejectedWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "techsalle",
			Subsystem: "inventory",
			Name:      "rejected_writes_total",
			Help:      "Inventory writes rejected as invalid or conflicting.",
		},
		[]string{"entity", "reason"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		inventoryWrites,
		rejectedWrites,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordWrite counts a successful create, update or delete.
func RecordWrite(entity, op string) {
	inventoryWrites.WithLabelValues(entity, op).Inc()
}

// RecordRejection counts a write refused with a client error.
func RecordRejection(entity, reason string) {
	rejectedWrites.WithLabelValues(entity, reason).Inc()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Requests are labelled by chi route pattern so ids do not explode the
// label space.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
