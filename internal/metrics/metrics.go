// Package metrics exposes store activity as Prometheus series.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fintrack"

// Recorder owns a private registry so tests and multiple stores in one
// process do not collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	dispatched    *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	persistWrites *prometheus.CounterVec
	notifications *prometheus.CounterVec
	version       prometheus.Gauge
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	rateLimited   prometheus.Counter
	viewCache     *prometheus.CounterVec
}

// New registers every series on a fresh registry, plus the Go runtime and
// process collectors when withRuntime is set.
func New(withRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_dispatched_total",
			Help:      "Actions applied to the state, by action type.",
		}, []string{"action"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_rejected_total",
			Help:      "Actions refused at dispatch, by action type and reason.",
		}, []string{"action", "reason"}),
		persistWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_writes_total",
			Help:      "Background writes of the state document, by result.",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_published_total",
			Help:      "Change notifications sent to the broker, by result.",
		}, []string{"result"}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_version",
			Help:      "Number of actions applied since startup.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests refused by the per-client rate limit.",
		}),
		viewCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_cache_lookups_total",
			Help:      "Derived view cache lookups, by view and result.",
		}, []string{"view", "result"}),
	}
	r.registry.MustRegister(
		r.dispatched, r.rejected, r.persistWrites, r.notifications, r.version,
		r.requests, r.latency, r.rateLimited, r.viewCache,
	)
	if withRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

func (r *Recorder) Dispatched(action string) {
	r.dispatched.WithLabelValues(action).Inc()
}

func (r *Recorder) Rejected(action, reason string) {
	r.rejected.WithLabelValues(action, reason).Inc()
}

func (r *Recorder) Version(v uint64) {
	r.version.Set(float64(v))
}

// PersistResult counts one background save. Pass it to persist.WithSaveHook.
func (r *Recorder) PersistResult(err error) {
	r.persistWrites.WithLabelValues(result(err)).Inc()
}

// PublishResult counts one change notification.
func (r *Recorder) PublishResult(err error) {
	r.notifications.WithLabelValues(result(err)).Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, d time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (r *Recorder) RateLimited() {
	r.rateLimited.Inc()
}

// ViewLookup counts a derived view served from cache (hit) or computed.
func (r *Recorder) ViewLookup(view string, hit bool) {
	res := "miss"
	if hit {
		res = "hit"
	}
	r.viewCache.WithLabelValues(view, res).Inc()
}

// TrackCache exposes the entry count of one derived view cache. Tracking
// the same cache name twice keeps the first.
func (r *Recorder) TrackCache(name string, size func() int) {
	_ = r.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "view_cache_entries",
		Help:        "Entries held by a derived view cache.",
		ConstLabels: prometheus.Labels{"cache": name},
	}, func() float64 { return float64(size()) }))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
