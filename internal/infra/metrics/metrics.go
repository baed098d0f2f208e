package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	relayEvents   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	matchScores   prometheus.Histogram
}

func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matrimony",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "matrimony",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		relayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matrimony",
			Name:      "relay_events_total",
			Help:      "Realtime events pushed to connected users.",
		}, []string{"event"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matrimony",
			Name:      "notifications_total",
			Help:      "Email notifications by outcome.",
		}, []string{"outcome"}),
		matchScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matrimony",
			Name:      "match_score",
			Help:      "Distribution of computed compatibility scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.relayEvents,
		r.notifications,
		r.matchScores,
	)

	return r
}

func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (r *Registry) RelayEvent(event string) {
	if r == nil {
		return
	}
	r.relayEvents.WithLabelValues(event).Inc()
}

func (r *Registry) Notification(outcome string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(outcome).Inc()
}

func (r *Registry) MatchScore(score int) {
	if r == nil {
		return
	}
	r.matchScores.Observe(float64(score))
}
