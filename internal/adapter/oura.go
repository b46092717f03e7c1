// Package adapter turns raw provider payloads and user-supplied files into
// canonical day fragments. Adapters are pure input transforms: they never
// touch a store, and they are total over well-formed responses — a field in
// an unexpected shape is dropped, never the whole day.
package adapter

import (
	"encoding/json"
	"sort"

	"example.com/healthsync/internal/domain"
)

// providerPage is the envelope every Oura v2 collection endpoint returns.
// Items are decoded individually so one malformed entry cannot sink the
// rest of the page.
type providerPage struct {
	Data []json.RawMessage `json:"data"`
}

// NormalizeSleep maps per-night sleep summaries into sleep fragments. One
// sleep period may span a date boundary; it is assigned to the calendar
// date of its bedtime start.
func NormalizeSleep(payload []byte) []domain.DayRecord {
	var out []domain.DayRecord
	for _, item := range decodeItems(payload) {
		bedtimeStart := stringField(item, "bedtime_start")
		date := dateOf(bedtimeStart)
		if date == "" {
			date = stringField(item, "day")
		}
		if date == "" {
			continue
		}

		sleep := &domain.SleepData{
			DurationHours:  floatField(item, "total_sleep_duration") / 3600,
			Efficiency:     floatField(item, "efficiency"),
			DeepMin:        floatField(item, "deep_sleep_duration") / 60,
			RemMin:         floatField(item, "rem_sleep_duration") / 60,
			LightMin:       floatField(item, "light_sleep_duration") / 60,
			AwakeMin:       floatField(item, "awake_time") / 60,
			ReadinessScore: floatField(item, "score"),
			PhasesPer5Min:  stringField(item, "sleep_phase_5_min"),
			BedtimeStart:   bedtimeStart,
			BedtimeEnd:     stringField(item, "bedtime_end"),
		}
		if readiness, ok := item["readiness"].(map[string]any); ok && sleep.ReadinessScore == 0 {
			sleep.ReadinessScore = floatField(readiness, "score")
		}

		out = append(out, domain.DayRecord{Date: date, Source: "oura", Sleep: sleep})
	}
	return out
}

// NormalizeHeartRate groups discrete heart-rate samples by calendar date
// and derives the per-day min/max. Samples arrive already concatenated
// across provider pages, in arrival order.
func NormalizeHeartRate(payload []byte) []domain.DayRecord {
	byDate := make(map[string]*domain.HeartData)
	var order []string
	for _, item := range decodeItems(payload) {
		ts := stringField(item, "timestamp")
		date := dateOf(ts)
		if date == "" {
			continue
		}
		bpm := floatField(item, "bpm")
		if bpm == 0 {
			continue
		}

		heart := byDate[date]
		if heart == nil {
			heart = &domain.HeartData{}
			byDate[date] = heart
			order = append(order, date)
		}
		heart.Samples = append(heart.Samples, domain.HeartSample{Timestamp: ts, BPM: bpm})
		if heart.HRMin == 0 || bpm < heart.HRMin {
			heart.HRMin = bpm
		}
		if bpm > heart.HRMax {
			heart.HRMax = bpm
		}
	}

	sort.Strings(order)
	out := make([]domain.DayRecord, 0, len(order))
	for _, date := range order {
		out = append(out, domain.DayRecord{Date: date, Source: "oura", Heart: byDate[date]})
	}
	return out
}

// NormalizeActivity maps daily activity summaries into workout fragments,
// carrying either the MET-per-5-minute array with its own anchor or the
// coarser activity-class string anchored at day start.
func NormalizeActivity(payload []byte) []domain.DayRecord {
	var out []domain.DayRecord
	for _, item := range decodeItems(payload) {
		date := stringField(item, "day")
		if date == "" {
			continue
		}

		workout := &domain.WorkoutData{
			ActivityScore:  floatField(item, "score"),
			CaloriesActive: floatField(item, "active_calories"),
			Steps:          floatField(item, "steps"),
			ActiveMin:      (floatField(item, "high_activity_time") + floatField(item, "medium_activity_time")) / 60,
			ClassPer5Min:   stringField(item, "class_5_min"),
		}
		if met, ok := item["met"].(map[string]any); ok {
			workout.METItems = floatSliceField(met, "items")
			workout.METTimestamp = stringField(met, "timestamp")
		}

		out = append(out, domain.DayRecord{Date: date, Source: "oura", Workout: workout})
	}
	return out
}

// NormalizeStress maps daily stress summaries into stress fragments. The
// provider reports stress and recovery in seconds; the canonical record
// holds minutes. DaySummary is an opaque provider-computed label.
func NormalizeStress(payload []byte) []domain.DayRecord {
	var out []domain.DayRecord
	for _, item := range decodeItems(payload) {
		date := stringField(item, "day")
		if date == "" {
			continue
		}
		out = append(out, domain.DayRecord{
			Date:   date,
			Source: "oura",
			Stress: &domain.StressData{
				StressHighMin:   floatField(item, "stress_high") / 60,
				RecoveryHighMin: floatField(item, "recovery_high") / 60,
				DaySummary:      stringField(item, "day_summary"),
			},
		})
	}
	return out
}

// decodeItems unwraps the page envelope and decodes each entry into a
// loose map. Entries that are not JSON objects are skipped.
func decodeItems(payload []byte) []map[string]any {
	var page providerPage
	if err := json.Unmarshal(payload, &page); err != nil {
		return nil
	}
	items := make([]map[string]any, 0, len(page.Data))
	for _, raw := range page.Data {
		var item map[string]any
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

// floatField extracts a numeric field, returning zero when the field is
// absent or the wrong shape.
func floatField(item map[string]any, key string) float64 {
	v, _ := item[key].(float64)
	return v
}

func stringField(item map[string]any, key string) string {
	v, _ := item[key].(string)
	return v
}

func floatSliceField(item map[string]any, key string) []float64 {
	raw, ok := item[key].([]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, entry := range raw {
		v, ok := entry.(float64)
		if !ok {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// dateOf extracts the YYYY-MM-DD prefix of an ISO timestamp.
func dateOf(timestamp string) string {
	if len(timestamp) < 10 {
		return ""
	}
	date := timestamp[:10]
	if date[4] != '-' || date[7] != '-' {
		return ""
	}
	return date
}
