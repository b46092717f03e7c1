package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordsSyncedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthsync",
		Subsystem: "sync",
		Name:      "records_total",
		Help:      "Day fragments merged into the store, by provider endpoint.",
	}, []string{"endpoint"})
	syncErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthsync",
		Subsystem: "sync",
		Name:      "errors_total",
		Help:      "Endpoint failures recorded during sync passes.",
	}, []string{"endpoint"})
	lastSyncGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthsync",
		Subsystem: "sync",
		Name:      "last_pass_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed sync pass.",
	})
	recordsMergedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthsync",
		Subsystem: "store",
		Name:      "merged_upserts_total",
		Help:      "Merge-upserts applied to the record store.",
	})
)

func init() {
	prometheus.MustRegister(recordsSyncedCounter, syncErrorCounter, lastSyncGauge, recordsMergedCounter)
}

// RecordRecordsSynced counts fragments merged for one endpoint.
func RecordRecordsSynced(endpoint string, count int) {
	if count <= 0 {
		return
	}
	recordsSyncedCounter.WithLabelValues(endpoint).Add(float64(count))
}

// RecordSyncError counts an endpoint failure.
func RecordSyncError(endpoint string) {
	syncErrorCounter.WithLabelValues(endpoint).Inc()
}

// RecordSyncPass updates the last-pass watermark.
func RecordSyncPass(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastSyncGauge.Set(float64(ts.Unix()))
}

// RecordMergedUpsert counts one merge-upsert against the store.
func RecordMergedUpsert() {
	recordsMergedCounter.Inc()
}
