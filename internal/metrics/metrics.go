// Package metrics defines the Prometheus metrics exported by the backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scrape results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// API metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acumon_api_requests_total",
			Help: "Total backend API requests by route",
		},
		[]string{"route"},
	)

	// Scraper metrics
	ScrapesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acumon_scrapes_total",
			Help: "Total scraper runs by result",
		},
		[]string{"result"},
	)

	ScrapeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "acumon_scrape_duration_seconds",
			Help:    "Scraper run duration in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	// Store metrics
	SnapshotsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "acumon_snapshots_recorded_total",
			Help: "Total credit records appended to the store",
		},
	)

	PublishErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "acumon_publish_errors_total",
			Help: "Snapshots that failed to publish over MQTT",
		},
	)

	StreamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "acumon_stream_subscribers",
			Help: "Number of connected event stream clients",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		ScrapesTotal,
		ScrapeDuration,
		SnapshotsRecorded,
		PublishErrors,
		StreamSubscribers,
	)
}

// Handler serves the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument counts every request served by h under route.
func Instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	counter := RequestsTotal.WithLabelValues(route)
	return func(w http.ResponseWriter, r *http.Request) {
		counter.Inc()
		h(w, r)
	}
}
