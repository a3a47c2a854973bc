package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	ticksTotal    *prometheus.CounterVec
	ticksDropped  *prometheus.CounterVec
	refreshCycles prometheus.Counter
	refreshFailed prometheus.Counter
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	insightsTotal *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plusalpha_ticks_total",
				Help: "Total number of price ticks applied",
			},
			[]string{"symbol"},
		),
		ticksDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plusalpha_ticks_dropped_total",
				Help: "Total number of ticks dropped before reaching the store",
			},
			[]string{"reason"},
		),
		refreshCycles: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "plusalpha_refresh_cycles_total",
				Help: "Total number of completed refresh cycles",
			},
		),
		refreshFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "plusalpha_refresh_failures_total",
				Help: "Total number of per-symbol fetch failures across refresh cycles",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plusalpha_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plusalpha_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		insightsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plusalpha_insights_total",
				Help: "Insight generations by outcome (model, fallback, busy)",
			},
			[]string{"outcome"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plusalpha_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordTick(symbol string) {
	r.ticksTotal.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordTickDropped(kind string) {
	r.ticksDropped.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordRefreshCycle(failed int) {
	r.refreshCycles.Inc()
	r.refreshFailed.Add(float64(failed))
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordInsight(outcome string) {
	r.insightsTotal.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
