package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resumepilot"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "generation_total", Help: "Finished generation pipeline runs by result."},
		[]string{"result"},
	)
	GenerationStageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "generation_stage_failures_total", Help: "Generation failures by pipeline stage and error kind."},
		[]string{"stage", "kind"},
	)

	CompileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "latex_compile_duration_seconds",
			Help:      "Wall time of a full multi-pass LaTeX compilation.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		},
	)
	CompileInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "latex_compile_inflight", Help: "Compilations currently holding a worker slot."},
	)

	BlobDeleteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "blob_delete_failures_total", Help: "Blob deletions that failed during a best-effort cascade."},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Latency of chat-completion calls by outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 9),
		},
		[]string{"outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(GenerationTotal)
	reg.MustRegister(GenerationStageFailures)
	reg.MustRegister(CompileDuration)
	reg.MustRegister(CompileInflight)
	reg.MustRegister(BlobDeleteFailures)
	reg.MustRegister(LLMRequestDuration)
}
