package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nowcast_eval"

// Metrics holds the Prometheus counters, histograms, and gauges for evaluation
// runs and nowcast publication.
type Metrics struct {
	RowsLoaded         *prometheus.CounterVec // labels: dataset
	LocationsEvaluated prometheus.Counter
	LocationsSkipped   *prometheus.CounterVec // labels: reason={missing_dataset,empty_intersection,degenerate_baseline,other}
	EvaluationDuration prometheus.Histogram
	HTTPRequests       *prometheus.CounterVec // labels: endpoint, code

	// Publication metrics.
	RecordsPublished       prometheus.Counter
	RecordsSkipped         prometheus.Counter
	PublishErrors          prometheus.Counter
	PublishRunning         prometheus.Gauge
	BatchSize              prometheus.Histogram
	BatchPublishDuration   prometheus.Histogram
	LastUpdateSentinelUnix prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsLoaded,
		m.LocationsEvaluated,
		m.LocationsSkipped,
		m.EvaluationDuration,
		m.HTTPRequests,
		m.RecordsPublished,
		m.RecordsSkipped,
		m.PublishErrors,
		m.PublishRunning,
		m.BatchSize,
		m.BatchPublishDuration,
		m.LastUpdateSentinelUnix,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows loaded into the time-series store by dataset.",
		}, []string{"dataset"}),
		LocationsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_evaluated_total",
			Help:      "Locations with a complete comparison row.",
		}),
		LocationsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_skipped_total",
			Help:      "Locations left out of a report by failure reason.",
		}, []string{"reason"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of a full comparison table run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Analysis API requests by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Nowcast records written to the publish sink.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Nowcast rows not published because their standard deviation is not numeric.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed batch writes, including retried ones.",
		}),
		PublishRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_running",
			Help:      "1 while a publication run is active, 0 otherwise.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of records per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchPublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_publish_duration_seconds",
			Help:      "Duration of a single batch write including retries.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		LastUpdateSentinelUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_update_sentinel_unixtime",
			Help:      "Timestamp encoded in the most recently written update sentinel.",
		}),
	}
}
