// Package api assembles the HTTP surface: middleware stack, resource
// handlers, the service index, health and metrics endpoints.
package api

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/techsalle/inventory/app/catalog"
	"github.com/techsalle/inventory/app/categories"
	"github.com/techsalle/inventory/app/metrics"
	"github.com/techsalle/inventory/app/respond"
	"github.com/techsalle/inventory/app/statistics"
)

const serviceName = "techsalle-inventory"

// Pinger is satisfied by every storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	CORSOrigins    []string
	MaxBodyBytes   int64
	RateLimitRPS   int
	RateLimitBurst int

	// Limiter buckets are dropped every RateLimitCleanup once more than
	// RateLimitMaxClients addresses are tracked.
	RateLimitCleanup    time.Duration
	RateLimitMaxClients int
}

type Deps struct {
	Products   catalog.ProductProvider
	Categories categories.CategoryProvider
	Statistics statistics.StatisticsProvider
	Health     Pinger
	Log        logrus.FieldLogger
}

type indexResponse struct {
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Routes []string `json:"routes"`
}

// NewRouter wires the handlers behind the shared middleware stack.
// A zero RateLimitRPS disables rate limiting. Background work started here
// stops when ctx is done.
func NewRouter(ctx context.Context, deps Deps, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	if opts.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(opts.MaxBodyBytes))
	}
	if opts.RateLimitRPS > 0 {
		limiter := NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, deps.Log)
		if opts.RateLimitCleanup > 0 {
			limiter.StartCleanup(ctx, opts.RateLimitCleanup, opts.RateLimitMaxClients)
		}
		r.Use(limiter.Handler)
	}

	r.Get("/", handleIndex(r))
	r.Get("/healthz", handleHealth(deps.Health, deps.Log))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/products", catalog.NewCatalogHandler(deps.Products, deps.Log).Routes)
	r.Route("/categories", categories.NewCategoryHandler(deps.Categories, deps.Log).Routes)
	r.Get("/statistics", statistics.NewStatisticsHandler(deps.Statistics, deps.Log).HandleGet)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// handleIndex lists every registered route as "METHOD /path".
func handleIndex(routes chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var list []string
		_ = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if route != "/" {
				route = strings.TrimSuffix(route, "/")
			}
			list = append(list, method+" "+route)
			return nil
		})
		sort.Strings(list)
		respond.JSON(w, http.StatusOK, indexResponse{Name: serviceName, Status: "OK", Routes: list})
	}
}

func handleHealth(p Pinger, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				log.WithError(err).Error("Health check failed")
				respond.Error(w, http.StatusServiceUnavailable, "storage unavailable")
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
