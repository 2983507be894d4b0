// Package metrics counts what a run did and exports the counters in the
// Prometheus text format, for node_exporter's textfile collector.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "triage"

// Classification outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

// Recorder holds the counters of one run. A nil *Recorder discards
// everything.
type Recorder struct {
	reg             *prometheus.Registry
	records         prometheus.Counter
	skipped         prometheus.Counter
	threads         prometheus.Counter
	classifications *prometheus.CounterVec
	callSeconds     prometheus.Histogram
	lastRun         prometheus.Gauge
}

// New builds a Recorder on its own registry. command labels every series.
func New(command string) *Recorder {
	labels := prometheus.Labels{"command": command}
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "records_read_total",
			Help:        "Message records decoded from the input document.",
			ConstLabels: labels,
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "records_skipped_total",
			Help:        "Records dropped for lacking a conversation id.",
			ConstLabels: labels,
		}),
		threads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "threads_total",
			Help:        "Threads emitted or classified.",
			ConstLabels: labels,
		}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "classifications_total",
			Help:        "Classifier results by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		callSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "classify_call_seconds",
			Help:        "Latency of completion API calls.",
			ConstLabels: labels,
			Buckets:     []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the run finished.",
			ConstLabels: labels,
		}),
	}
	r.reg.MustRegister(r.records, r.skipped, r.threads, r.classifications, r.callSeconds, r.lastRun)
	return r
}

func (r *Recorder) RecordsRead(n int) {
	if r == nil {
		return
	}
	r.records.Add(float64(n))
}

func (r *Recorder) RecordSkipped() {
	if r == nil {
		return
	}
	r.skipped.Inc()
}

func (r *Recorder) Threads(n int) {
	if r == nil {
		return
	}
	r.threads.Add(float64(n))
}

// Classified counts one classifier result and its call latency.
func (r *Recorder) Classified(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(outcome).Inc()
	r.callSeconds.Observe(elapsed.Seconds())
}

// WriteFile stamps the finish time and writes the textfile at path. An empty
// path is a no-op.
func (r *Recorder) WriteFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	r.lastRun.SetToCurrentTime()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
