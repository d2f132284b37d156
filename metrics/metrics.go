package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/xerrors"
)

// Recorder keeps the outcome of feed runs for the node exporter textfile collector.
type Recorder struct {
	registry *prometheus.Registry

	Indicators  *prometheus.GaugeVec
	LastSuccess *prometheus.GaugeVec
	Duration    *prometheus.GaugeVec
	Failures    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Indicators: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stix_feed_indicators",
				Help: "Indicators written to the last bundle",
			},
			[]string{"target"},
		),
		LastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stix_feed_last_success_timestamp_seconds",
				Help: "Unix time of the last bundle written",
			},
			[]string{"target"},
		),
		Duration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stix_feed_run_duration_seconds",
				Help: "Duration of the last run",
			},
			[]string{"target"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stix_feed_run_failures_total",
				Help: "Failed runs",
			},
			[]string{"target"},
		),
	}
}

func (r *Recorder) Success(target string, indicators int, started, finished time.Time) {
	r.Indicators.WithLabelValues(target).Set(float64(indicators))
	r.LastSuccess.WithLabelValues(target).Set(float64(finished.Unix()))
	r.Duration.WithLabelValues(target).Set(finished.Sub(started).Seconds())
}

func (r *Recorder) Failure(target string, started, finished time.Time) {
	r.Failures.WithLabelValues(target).Inc()
	r.Duration.WithLabelValues(target).Set(finished.Sub(started).Seconds())
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return xerrors.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
