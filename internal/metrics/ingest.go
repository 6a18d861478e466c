package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion Prometheus metrics.
var (
	IngestRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedback",
			Name:      "ingest_rows_total",
			Help:      "Dataset rows seen by the ingestion pipeline",
		},
		[]string{"outcome"}, // "kept" / "skipped_empty_text" / "skipped_no_id" / "skipped_duplicate"
	)

	IngestChunksWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "feedback",
			Name:      "ingest_chunks_written_total",
			Help:      "Embedded chunks written to the vector index",
		},
	)

	IngestBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "feedback",
			Name:      "ingest_batch_duration_seconds",
			Help:      "Duration of one embed-and-write batch",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestRowsTotal)
	prometheus.MustRegister(IngestChunksWritten)
	prometheus.MustRegister(IngestBatchDuration)
	ingestMetricsRegistered = true
}
