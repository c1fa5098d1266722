// Package metrics exposes interview and HTTP metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mockinterview/internal/narration"
	"mockinterview/internal/orchestrator"
)

const namespace = "mockinterview"

// Recorder owns a private registry so several daemons (or tests) can coexist
// in one process.
type Recorder struct {
	registry *prometheus.Registry

	sessionsStarted   *prometheus.CounterVec
	sessionsCompleted prometheus.Counter
	sessionsExited    *prometheus.CounterVec
	sessionsActive    prometheus.Gauge
	sessionDuration   prometheus.Histogram
	overallScore      prometheus.Histogram
	responses         prometheus.Counter
	responseSeconds   prometheus.Histogram
	devicesFailed     prometheus.Counter
	narrations        *prometheus.CounterVec
	sessionsReaped    prometheus.Counter
	sessionsPruned    prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		sessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Interview sessions started, by question source.",
		}, []string{"source"}),
		sessionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Interview sessions that reached an evaluation.",
		}),
		sessionsExited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_exited_total",
			Help:      "Interview sessions abandoned before completion, by phase.",
		}, []string{"phase"}),
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Interview sessions currently registered.",
		}),
		sessionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Wall time from start to completion.",
			Buckets:   []float64{60, 180, 300, 600, 900, 1200, 1800, 3600},
		}),
		overallScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Overall score of completed sessions.",
			Buckets:   prometheus.LinearBuckets(50, 5, 11),
		}),
		responses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_recorded_total",
			Help:      "Responses appended to sessions.",
		}),
		responseSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_duration_seconds",
			Help:      "Recorded response durations.",
			Buckets:   prometheus.LinearBuckets(30, 10, 7),
		}),
		devicesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_unavailable_total",
			Help:      "Capture acquisitions that failed.",
		}),
		narrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narrations_total",
			Help:      "Narration utterances finished, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		sessionsReaped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_reaped_total",
			Help:      "Idle sessions torn down by the reaper.",
		}),
		sessionsPruned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_pruned_total",
			Help:      "Stored sessions removed by retention.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

var _ orchestrator.Metrics = (*Recorder)(nil)

func (r *Recorder) SessionStarted(tailored bool) {
	source := "fallback"
	if tailored {
		source = "job_post"
	}
	r.sessionsStarted.WithLabelValues(source).Inc()
}

func (r *Recorder) ResponseRecorded(seconds int) {
	r.responses.Inc()
	r.responseSeconds.Observe(float64(seconds))
}

func (r *Recorder) SessionCompleted(overall int, elapsed time.Duration) {
	r.sessionsCompleted.Inc()
	r.overallScore.Observe(float64(overall))
	r.sessionDuration.Observe(elapsed.Seconds())
}

func (r *Recorder) SessionExited(phase orchestrator.Phase) {
	r.sessionsExited.WithLabelValues(string(phase)).Inc()
}

func (r *Recorder) DeviceUnavailable() {
	r.devicesFailed.Inc()
}

func (r *Recorder) NarrationEnded(kind narration.Kind, canceled bool) {
	outcome := "finished"
	if canceled {
		outcome = "canceled"
	}
	r.narrations.WithLabelValues(string(kind), outcome).Inc()
}

// SetActive records the number of registered sessions.
func (r *Recorder) SetActive(n int) {
	r.sessionsActive.Set(float64(n))
}

// SessionsReaped counts idle sessions torn down.
func (r *Recorder) SessionsReaped(n int) {
	r.sessionsReaped.Add(float64(n))
}

// SessionsPruned counts stored sessions deleted by retention.
func (r *Recorder) SessionsPruned(n int64) {
	r.sessionsPruned.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Middleware counts requests by matched route.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		r.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
