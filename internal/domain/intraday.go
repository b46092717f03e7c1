package domain

import (
	"example.com/healthsync/internal/timeseries"
)

// IntradayPoint is one positioned sample of an intraday series.
type IntradayPoint struct {
	Hour  float64 `json:"hour"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// IntradayView expands a day's compact encodings into clock-positioned
// series. Hours sit inside a 24h window starting at WindowStart so a night
// that crosses midnight plots as one contiguous run.
type IntradayView struct {
	Date        string          `json:"date"`
	WindowStart float64         `json:"window_start"`
	SleepPhases []IntradayPoint `json:"sleep_phases,omitempty"`
	MetMinutes  []IntradayPoint `json:"met_minutes,omitempty"`
	Classes     []IntradayPoint `json:"activity_classes,omitempty"`
	HeartRate   []IntradayPoint `json:"heart_rate,omitempty"`
}

// binWidthMinutes is the provider's fixed interval for the encoded series.
const binWidthMinutes = 5

// BuildIntraday decodes the encoded series a record carries. Malformed
// encodings drop their series, never the view; missing categories simply
// yield empty series.
func BuildIntraday(record DayRecord, windowStart float64) IntradayView {
	view := IntradayView{Date: record.Date, WindowStart: windowStart}

	if record.Sleep != nil {
		if bins, err := timeseries.DecodeBins(record.Sleep.PhasesPer5Min, "|"); err == nil {
			points := timeseries.MapToClockHours(bins, record.Sleep.BedtimeStart, binWidthMinutes)
			view.SleepPhases = windowed(points, windowStart)
		}
	}

	if record.Workout != nil {
		if len(record.Workout.METItems) > 0 {
			points := timeseries.MapToClockHours(record.Workout.METItems, record.Workout.METTimestamp, binWidthMinutes)
			view.MetMinutes = windowed(points, windowStart)
		}
		// class_5min is one digit per bin, anchored at day start.
		if bins, err := timeseries.DecodeBins(record.Workout.ClassPer5Min, ""); err == nil {
			points := timeseries.MapToClockHours(bins, record.Date, binWidthMinutes)
			view.Classes = windowed(points, windowStart)
		}
	}

	if record.Heart != nil {
		for _, sample := range record.Heart.Samples {
			// A single-bin mapping positions the discrete sample at its
			// own timestamp.
			points := timeseries.MapToClockHours([]float64{sample.BPM}, sample.Timestamp, 0)
			view.HeartRate = append(view.HeartRate, windowed(points, windowStart)...)
		}
	}

	return view
}

func windowed(points []timeseries.Point, windowStart float64) []IntradayPoint {
	if len(points) == 0 {
		return nil
	}
	out := make([]IntradayPoint, len(points))
	for i, p := range points {
		hour := timeseries.ShiftIntoWindow(p.Hour, windowStart)
		out[i] = IntradayPoint{
			Hour:  hour,
			Label: timeseries.FormatHour(hour),
			Value: p.Value,
		}
	}
	return out
}
