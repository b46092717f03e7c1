// Package timeseries decodes the compact fixed-interval encodings embedded
// in provider payloads (pipe-separated sleep stages, MET-per-bin arrays)
// into clock-anchored samples.
package timeseries

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedEncoding indicates a non-numeric token inside an encoded
// timeseries string. The error is local to one field: adapters catch it and
// drop the field rather than the day.
var ErrMalformedEncoding = fmt.Errorf("malformed timeseries encoding")

// Point is one decoded sample positioned on a fractional clock hour.
// Hour is not reduced modulo 24; callers window with ShiftIntoWindow.
type Point struct {
	Hour  float64
	Value float64
}

// DecodeBins splits encoded on delimiter and parses each token as a number.
// Empty input yields an empty slice, never an error.
func DecodeBins(encoded, delimiter string) ([]float64, error) {
	if encoded == "" {
		return nil, nil
	}
	tokens := strings.Split(encoded, delimiter)
	bins := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token %q", ErrMalformedEncoding, tok)
		}
		bins = append(bins, v)
	}
	return bins, nil
}

// MapToClockHours positions each bin on the clock: bin i lands at the
// anchor's fractional hour plus i bin-widths. Hours accumulate past 24 so a
// sequence crossing midnight stays monotonic. An unparseable anchor yields
// an empty slice.
func MapToClockHours(bins []float64, anchor string, binWidthMinutes float64) []Point {
	if len(bins) == 0 {
		return nil
	}
	ts, ok := parseAnchor(anchor)
	if !ok {
		return nil
	}
	base := float64(ts.Hour()) + float64(ts.Minute())/60
	points := make([]Point, len(bins))
	for i, v := range bins {
		points[i] = Point{
			Hour:  base + float64(i)*binWidthMinutes/60,
			Value: v,
		}
	}
	return points
}

// ShiftIntoWindow maps hour into [windowStart, windowStart+24). Closed form
// rather than repeated adjustment, so an anchor days in the past cannot
// spin the caller.
func ShiftIntoWindow(hour, windowStart float64) float64 {
	return windowStart + math.Mod(math.Mod(hour-windowStart, 24)+24, 24)
}

// FormatHour renders a fractional hour as "HH:MM", reduced modulo 24 for
// display.
func FormatHour(hour float64) string {
	h := math.Mod(math.Mod(hour, 24)+24, 24)
	whole := int(h)
	minutes := int(math.Round((h - float64(whole)) * 60))
	if minutes == 60 {
		whole = (whole + 1) % 24
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", whole, minutes)
}

// anchorLayouts covers the timestamp shapes providers emit: full RFC 3339,
// zone-less datetimes, and bare dates.
var anchorLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseAnchor(anchor string) (time.Time, bool) {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return time.Time{}, false
	}
	for _, layout := range anchorLayouts {
		if ts, err := time.Parse(layout, anchor); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
