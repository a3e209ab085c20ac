// Package metrics records remark pipeline metrics with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "remark"

// Recorder owns the collectors for one process.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	remarksAssigned    *prometheus.CounterVec
	fallbacks          *prometheus.CounterVec
	runs               *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	poolLeftovers      prometheus.Histogram
	rpcDuration        *prometheus.HistogramVec
}

type Option func(*Recorder)

func WithNamespace(ns string) Option {
	return func(r *Recorder) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

func WithHistogramBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = buckets
		}
	}
}

// WithRegistry registers collectors on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(r *Recorder) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// NewRecorder builds and registers all collectors.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: defaultNamespace,
		buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}

	r.remarksAssigned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "remarks_assigned_total",
		Help:      "Remarks assigned to roster rows, by band.",
	}, []string{"band"})
	r.fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "fallbacks_total",
		Help:      "Rows that received the fallback remark, by band.",
	}, []string{"band"})
	r.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "runs_total",
		Help:      "Annotation runs, by source and outcome.",
	}, []string{"source", "status"})
	r.generationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "generation_duration_seconds",
		Help:      "Latency of remark text generation calls.",
		Buckets:   r.buckets,
	}, []string{"status"})
	r.poolLeftovers = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "pool_leftover_remarks",
		Help:      "Generated remarks left unused after a run.",
		Buckets:   prometheus.LinearBuckets(0, 5, 10),
	})

	r.rpcDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "rpc_duration_seconds",
		Help:      "gRPC handling latency, by method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})

	r.registry.MustRegister(r.remarksAssigned, r.fallbacks, r.runs, r.generationDuration, r.poolLeftovers, r.rpcDuration)
	return r
}

// ObserveAssignment counts one row's remark.
func (r *Recorder) ObserveAssignment(band string, fallback bool) {
	if r == nil {
		return
	}
	if fallback {
		r.fallbacks.WithLabelValues(band).Inc()
		return
	}
	r.remarksAssigned.WithLabelValues(band).Inc()
}

func (r *Recorder) ObserveGeneration(d time.Duration, err error) {
	if r == nil {
		return
	}
	r.generationDuration.WithLabelValues(status(err)).Observe(d.Seconds())
}

func (r *Recorder) ObserveRun(source string, leftovers int, err error) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(source, status(err)).Inc()
	if err == nil {
		r.poolLeftovers.Observe(float64(leftovers))
	}
}

// ObserveRPC records one unary call.
func (r *Recorder) ObserveRPC(method, code string, d time.Duration) {
	if r == nil {
		return
	}
	r.rpcDuration.WithLabelValues(method, code).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
