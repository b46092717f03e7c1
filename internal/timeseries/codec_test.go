package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeBins(t *testing.T) {
	bins, err := DecodeBins("1|2|3|4", "|")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3, 4}, bins)
}

func TestDecodeBinsEmptyInput(t *testing.T) {
	bins, err := DecodeBins("", "|")
	require.NoError(t, err)
	require.Empty(t, bins)
}

func TestDecodeBinsMalformedToken(t *testing.T) {
	_, err := DecodeBins("1|x|3", "|")
	require.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestDecodeBinsFractionalValues(t *testing.T) {
	bins, err := DecodeBins("0.9,1.2,3.5", ",")
	require.NoError(t, err)
	require.Equal(t, []float64{0.9, 1.2, 3.5}, bins)
}

func TestMapToClockHours(t *testing.T) {
	points := MapToClockHours([]float64{1, 2, 3}, "2024-01-01T22:00", 5)
	require.Len(t, points, 3)
	require.InDelta(t, 22.0, points[0].Hour, 1e-9)
	require.InDelta(t, 22.0833, points[1].Hour, 1e-4)
	require.InDelta(t, 22.1666, points[2].Hour, 1e-4)
	require.Equal(t, 2.0, points[1].Value)
}

func TestMapToClockHoursCrossesMidnight(t *testing.T) {
	// 36 five-minute bins from 23:30 span three hours; the tail must keep
	// climbing past 24 rather than wrapping.
	bins := make([]float64, 36)
	points := MapToClockHours(bins, "2024-03-01T23:30:00", 5)
	last := points[len(points)-1]
	require.InDelta(t, 23.5+35.0*5/60, last.Hour, 1e-9)
	require.Greater(t, last.Hour, 24.0)
}

func TestMapToClockHoursBadAnchor(t *testing.T) {
	require.Nil(t, MapToClockHours([]float64{1, 2}, "not-a-timestamp", 5))
	require.Nil(t, MapToClockHours([]float64{1, 2}, "", 5))
}

func TestShiftIntoWindow(t *testing.T) {
	require.InDelta(t, 26.5, ShiftIntoWindow(2.5, 20), 1e-9)
	require.InDelta(t, 23.0, ShiftIntoWindow(23, 20), 1e-9)
	require.InDelta(t, 20.0, ShiftIntoWindow(20, 20), 1e-9)
	// Far-off hours still land in a single pass.
	require.InDelta(t, 26.0, ShiftIntoWindow(-70, 20), 1e-9)
	require.InDelta(t, 20.0, ShiftIntoWindow(500, 20), 1e-9)
}

func TestShiftIntoWindowRange(t *testing.T) {
	for _, hour := range []float64{-100, -23.9, 0, 3.2, 12, 23.99, 24, 47.5, 300} {
		for _, start := range []float64{0, 6, 20, 23} {
			got := ShiftIntoWindow(hour, start)
			if got < start || got >= start+24 {
				t.Fatalf("ShiftIntoWindow(%v, %v) = %v out of window", hour, start, got)
			}
			if diff := math.Mod(math.Mod(got-hour, 24)+24, 24); diff > 1e-9 && diff < 24-1e-9 {
				t.Fatalf("ShiftIntoWindow(%v, %v) = %v not a 24h multiple away", hour, start, got)
			}
		}
	}
}

func TestFormatHour(t *testing.T) {
	require.Equal(t, "22:05", FormatHour(22.0833333))
	require.Equal(t, "02:30", FormatHour(26.5))
	require.Equal(t, "00:00", FormatHour(24))
	require.Equal(t, "23:00", FormatHour(-1))
}
