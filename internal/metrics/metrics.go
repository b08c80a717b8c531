package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Memberships     *prometheus.CounterVec
	RecipesWritten  *prometheus.CounterVec
	ShoppingLists   prometheus.Counter
}

// New registers all collectors on a private registry so that several
// servers (e.g. in tests) can coexist in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodshare_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "foodshare_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Memberships: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodshare_membership_changes_total",
				Help: "Successful favorite, shopping cart and subscription changes",
			},
			[]string{"kind", "action"},
		),
		RecipesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodshare_recipes_written_total",
				Help: "Recipes created, updated or deleted",
			},
			[]string{"action"},
		),
		ShoppingLists: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "foodshare_shopping_list_downloads_total",
				Help: "Shopping lists rendered for download",
			},
		),
	}

	m.registry.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.Memberships,
		m.RecipesWritten,
		m.ShoppingLists,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Membership counts one successful add/remove of kind
func (m *Metrics) Membership(kind, action string) {
	if m == nil {
		return
	}
	m.Memberships.WithLabelValues(kind, action).Inc()
}

// RecipeWritten counts one recipe create/update/delete
func (m *Metrics) RecipeWritten(action string) {
	if m == nil {
		return
	}
	m.RecipesWritten.WithLabelValues(action).Inc()
}
