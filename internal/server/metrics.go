package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry       *prometheus.Registry
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	storeFailures  prometheus.Counter
	renders        *prometheus.CounterVec
	renderFailures *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()

	m := &metrics{
		registry: reg,
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "class_calendar_cache_hits_total",
			Help: "Number of calendar responses served from cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "class_calendar_cache_misses_total",
			Help: "Number of times the response cache was cold or expired",
		}),
		storeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "class_calendar_store_failures_total",
			Help: "Number of schedule lookups that failed",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "class_calendar_renders_total",
			Help: "Number of calendars rendered by format and view",
		}, []string{"format", "view"}),
		renderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "class_calendar_render_failures_total",
			Help: "Number of calendar renders that failed",
		}, []string{"format"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "class_calendar_render_duration_seconds",
			Help:    "Time taken to load and render a calendar",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
	}

	reg.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.storeFailures,
		m.renders,
		m.renderFailures,
		m.renderDuration,
	)

	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
