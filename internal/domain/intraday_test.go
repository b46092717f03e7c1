package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildIntradaySleepPhases(t *testing.T) {
	record := DayRecord{
		Date: "2024-03-01",
		Sleep: &SleepData{
			PhasesPer5Min: "4|1|2|3",
			BedtimeStart:  "2024-02-29T23:50:00+00:00",
		},
	}

	view := BuildIntraday(record, 12)

	require.Len(t, view.SleepPhases, 4)
	// 23:50 anchors the first bin; the run crosses midnight but stays
	// monotonic inside the noon-to-noon window.
	require.InDelta(t, 23.0+50.0/60, view.SleepPhases[0].Hour, 1e-9)
	require.Equal(t, "23:50", view.SleepPhases[0].Label)
	require.InDelta(t, 24.0, view.SleepPhases[2].Hour, 1e-9)
	require.Equal(t, "00:00", view.SleepPhases[2].Label)
	require.Greater(t, view.SleepPhases[3].Hour, view.SleepPhases[2].Hour)
	require.Equal(t, 3.0, view.SleepPhases[3].Value)
}

func TestBuildIntradayMalformedPhasesDropSeries(t *testing.T) {
	record := DayRecord{
		Date: "2024-03-01",
		Sleep: &SleepData{
			PhasesPer5Min: "1|oops|3",
			BedtimeStart:  "2024-03-01T00:00:00+00:00",
		},
		Workout: &WorkoutData{
			METItems:     []float64{1.2, 3.4},
			METTimestamp: "2024-03-01T04:00:00+00:00",
		},
	}

	view := BuildIntraday(record, 12)

	require.Empty(t, view.SleepPhases)
	require.Len(t, view.MetMinutes, 2)
}

func TestBuildIntradayActivityClassesAnchorAtDayStart(t *testing.T) {
	record := DayRecord{
		Date:    "2024-03-01",
		Workout: &WorkoutData{ClassPer5Min: "0123"},
	}

	view := BuildIntraday(record, 0)

	require.Len(t, view.Classes, 4)
	require.InDelta(t, 0.0, view.Classes[0].Hour, 1e-9)
	require.InDelta(t, 0.25, view.Classes[3].Hour, 1e-9)
	require.Equal(t, 3.0, view.Classes[3].Value)
}

func TestBuildIntradayHeartSamples(t *testing.T) {
	record := DayRecord{
		Date: "2024-03-01",
		Heart: &HeartData{
			Samples: []HeartSample{
				{Timestamp: "2024-03-01T06:15:00+00:00", BPM: 52},
				{Timestamp: "2024-03-01T18:30:00+00:00", BPM: 81},
			},
		},
	}

	view := BuildIntraday(record, 0)

	require.Len(t, view.HeartRate, 2)
	require.InDelta(t, 6.25, view.HeartRate[0].Hour, 1e-9)
	require.Equal(t, 52.0, view.HeartRate[0].Value)
	require.Equal(t, "18:30", view.HeartRate[1].Label)
}

func TestBuildIntradayEmptyRecord(t *testing.T) {
	view := BuildIntraday(DayRecord{Date: "2024-03-01"}, 12)
	require.Empty(t, view.SleepPhases)
	require.Empty(t, view.MetMinutes)
	require.Empty(t, view.Classes)
	require.Empty(t, view.HeartRate)
}
