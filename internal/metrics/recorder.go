// Package metrics exposes thumbnail run outcomes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jt-lab-com/docs/internal/pipeline"
)

const namespace = "thumbgen"

// Recorder turns generator progress updates into metrics.
type Recorder struct {
	reg         *prom.Registry
	thumbnails  *prom.CounterVec
	runs        *prom.CounterVec
	runDuration prom.Histogram
	lastRun     prom.Gauge
}

// NewRecorder registers its metrics on reg, or on a fresh registry when reg is nil.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		reg: reg,
		thumbnails: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnails_total",
			Help:      "Source images handled, by outcome",
		}, []string{"action"}),
		runs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Generator runs by final status",
		}, []string{"outcome"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of completed runs",
			Buckets:   prom.DefBuckets,
		}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
	reg.MustRegister(r.thumbnails, r.runs, r.runDuration, r.lastRun)
	return r
}

// Record is meant to be chained into a pipeline.ProgressCallback.
func (r *Recorder) Record(u pipeline.ProgressUpdate) {
	if r == nil {
		return
	}
	switch u.Type {
	case pipeline.UpdateProgress:
		if u.Action != "" {
			r.thumbnails.WithLabelValues(string(u.Action)).Inc()
		}
	case pipeline.UpdateComplete:
		r.runs.WithLabelValues("success").Inc()
		r.lastRun.Set(float64(time.Now().Unix()))
		if u.Stats != nil {
			r.runDuration.Observe(u.Stats.Duration().Seconds())
		}
	case pipeline.UpdateError:
		r.runs.WithLabelValues("failed").Inc()
		r.lastRun.Set(float64(time.Now().Unix()))
	}
}

// Handler serves the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
