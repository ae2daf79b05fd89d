package importer

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds importer counters. Register them on a dedicated registry so
// a one-shot import does not collide with the API server's default one.
type Metrics struct {
	rowsProcessed prometheus.Counter
	rowsFailed    *prometheus.CounterVec
	batchesTotal  prometheus.Counter
	batchDuration prometheus.Histogram
}

// NewMetrics creates and registers importer metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bazaarmkt_import_rows_processed_total",
			Help: "Products written to the store.",
		}),
		rowsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bazaarmkt_import_rows_failed_total",
			Help: "Rows that were skipped or rejected, by reason.",
		}, []string{"reason"}),
		batchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bazaarmkt_import_batches_total",
			Help: "Batch upserts sent to the store.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bazaarmkt_import_batch_duration_seconds",
			Help:    "Duration of one batch upsert.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.rowsProcessed, m.rowsFailed, m.batchesTotal, m.batchDuration)
	return m
}
