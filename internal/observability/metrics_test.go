package observability

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, endpoint string) float64 {
	t.Helper()

	metric := &dto.Metric{}
	require.NoError(t, recordsSyncedCounter.WithLabelValues(endpoint).Write(metric))
	return metric.GetCounter().GetValue()
}

func TestRecordRecordsSynced(t *testing.T) {
	before := counterValue(t, "daily_sleep")

	RecordRecordsSynced("daily_sleep", 3)
	require.Equal(t, before+3, counterValue(t, "daily_sleep"))

	// Zero and negative counts are ignored.
	RecordRecordsSynced("daily_sleep", 0)
	RecordRecordsSynced("daily_sleep", -2)
	require.Equal(t, before+3, counterValue(t, "daily_sleep"))
}

func TestRecordSyncError(t *testing.T) {
	metric := &dto.Metric{}
	require.NoError(t, syncErrorCounter.WithLabelValues("heartrate").Write(metric))
	before := metric.GetCounter().GetValue()

	RecordSyncError("heartrate")

	require.NoError(t, syncErrorCounter.WithLabelValues("heartrate").Write(metric))
	require.Equal(t, before+1, metric.GetCounter().GetValue())
}

func TestRecordSyncPass(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	RecordSyncPass(ts)

	metric := &dto.Metric{}
	require.NoError(t, lastSyncGauge.Write(metric))
	require.Equal(t, float64(ts.Unix()), metric.GetGauge().GetValue())

	// A zero timestamp must not clobber the watermark.
	RecordSyncPass(time.Time{})
	require.NoError(t, lastSyncGauge.Write(metric))
	require.Equal(t, float64(ts.Unix()), metric.GetGauge().GetValue())
}
