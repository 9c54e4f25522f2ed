// Prometheus instrumentation for the generation pipeline. HTTP-level RED
// metrics live in the middleware package; these counters track pipeline
// outcomes that the transport cannot see.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// pipelineBatches counts generation-service batches by outcome.
	pipelineBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_generation_batches_total",
			Help: "Total generation-service batches by outcome.",
		},
		[]string{"outcome"}, // ok | generation_failed | parse_failed
	)

	// pipelineMessages counts messages delivered to the stream by source.
	pipelineMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_messages_total",
			Help: "Total messages delivered to consumers by source.",
		},
		[]string{"source"}, // cache | new
	)

	// quotaRejections counts requests rejected at quota admission.
	quotaRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_quota_rejections_total",
			Help: "Total requests rejected because the daily quota was exhausted.",
		},
	)
)

func init() {
	prometheus.MustRegister(pipelineBatches, pipelineMessages, quotaRejections)
}
