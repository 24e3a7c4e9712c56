package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Block buffer metrics
var (
	BufferBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "buffer_bytes",
		Help: "Current size in bytes of the block buffer awaiting handoff",
	})

	BufferBlocks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "buffer_blocks",
		Help: "Current number of blocks held in the block buffer awaiting handoff",
	})

	BufferHandoffsByTrigger = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buffer_handoffs_total",
		Help: "Number of buffer handoffs, labeled by the trigger that fired",
	}, []string{"trigger"})

	BufferBackpressureWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "buffer_backpressure_wait_seconds",
		Help:    "Time the ingest loop spent parked on backpressure before a consumer Take drained the buffer",
		Buckets: prometheus.DefBuckets,
	})
)

// Streaming client metrics
var (
	FinalizedHead = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finalized_head_number",
		Help: "The most recently observed finalized chain head number",
	})

	DeliveredBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivered_blocks_total",
		Help: "Number of blocks delivered to consumers, labeled by stream label",
	}, []string{"stream"})

	TruncationResumes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "truncation_resumes_total",
		Help: "Number of times the ingest loop reissued a request because a 200 response ended before the requested range was exhausted",
	})

	HeadPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "head_polls_total",
		Help: "Number of finalized-stream/height polls issued",
	})

	FatalErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fatal_errors_total",
		Help: "Number of fatal (non-recoverable) ingest errors, labeled by cause",
	}, []string{"cause"})
)

// Sink metrics
var (
	SinkPublishedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_published_records_total",
		Help: "Number of records handed to a downstream sink, labeled by sink name",
	}, []string{"sink"})

	SinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_errors_total",
		Help: "Number of downstream sink errors, labeled by sink name",
	}, []string{"sink"})
)
