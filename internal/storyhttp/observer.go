package storyhttp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer receives render and player measurements.
type Observer interface {
	ObserveRender(outcome string, pages int, elapsed time.Duration)
	PlayerSessionStarted()
	PlayerSessionEnded(reason string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRender(string, int, time.Duration)  {}
func (nopObserver) PlayerSessionStarted()                     {}
func (nopObserver) PlayerSessionEnded(string, time.Duration) {}

// PrometheusObserver exports measurements as Prometheus metrics.
type PrometheusObserver struct {
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	pages          prometheus.Histogram
	activeSessions prometheus.Gauge
	sessions       *prometheus.CounterVec
	sessionLength  prometheus.Histogram
}

// NewPrometheusObserver registers the story viewer metrics with reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	f := promauto.With(reg)
	return &PrometheusObserver{
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "story",
			Name:      "renders_total",
			Help:      "Story documents rendered, by outcome.",
		}, []string{"outcome"}),
		renderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "story",
			Name:      "render_duration_seconds",
			Help:      "Time to fetch and render a story document.",
			Buckets:   prometheus.DefBuckets,
		}),
		pages: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "story",
			Name:      "pages_per_document",
			Help:      "Pages in successfully rendered documents.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "story",
			Name:      "player_sessions_active",
			Help:      "Open interactive player sessions.",
		}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "story",
			Name:      "player_sessions_total",
			Help:      "Finished player sessions, by end reason.",
		}, []string{"reason"}),
		sessionLength: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "story",
			Name:      "player_session_duration_seconds",
			Help:      "Length of player sessions.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
}

func (o *PrometheusObserver) ObserveRender(outcome string, pages int, elapsed time.Duration) {
	o.renders.WithLabelValues(outcome).Inc()
	o.renderDuration.Observe(elapsed.Seconds())
	if outcome == "ok" {
		o.pages.Observe(float64(pages))
	}
}

func (o *PrometheusObserver) PlayerSessionStarted() {
	o.activeSessions.Inc()
}

func (o *PrometheusObserver) PlayerSessionEnded(reason string, elapsed time.Duration) {
	o.activeSessions.Dec()
	o.sessions.WithLabelValues(reason).Inc()
	o.sessionLength.Observe(elapsed.Seconds())
}
