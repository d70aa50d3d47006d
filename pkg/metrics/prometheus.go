package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	research    *prometheus.CounterVec
	branches    *prometheus.CounterVec
	market      *prometheus.CounterVec
	synthesis   *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg, or on the default registry when reg is nil.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		research: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finresearch_requests_total",
				Help: "Research runs by outcome (ok, degraded, rejected, abandoned)",
			},
			[]string{"outcome"},
		),
		branches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finresearch_branch_findings_total",
				Help: "Branch findings by outcome (ok, fallback)",
			},
			[]string{"outcome"},
		),
		market: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finresearch_market_snapshots_total",
				Help: "Market snapshots by source (ok, synthetic, skipped)",
			},
			[]string{"source"},
		),
		synthesis: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finresearch_synthesis_total",
				Help: "Synthesis results by outcome (ok, fallback)",
			},
			[]string{"outcome"},
		),
		storeErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finresearch_store_errors_total",
				Help: "Report store failures by operation",
			},
			[]string{"op"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finresearch_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 45, 90, 180},
			},
			[]string{"stage"},
		),
	}
}

func (r *Recorder) RecordResearch(outcome string) { r.research.WithLabelValues(outcome).Inc() }

func (r *Recorder) RecordBranch(outcome string) { r.branches.WithLabelValues(outcome).Inc() }

func (r *Recorder) RecordMarket(source string) { r.market.WithLabelValues(source).Inc() }

func (r *Recorder) RecordSynthesis(outcome string) { r.synthesis.WithLabelValues(outcome).Inc() }

func (r *Recorder) RecordStoreError(op string) { r.storeErrors.WithLabelValues(op).Inc() }

// RecordLatency records stage latency in seconds.
func (r *Recorder) RecordLatency(stage string, seconds float64) {
	r.latency.WithLabelValues(stage).Observe(seconds)
}
