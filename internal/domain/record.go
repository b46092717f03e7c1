// Package domain defines the canonical day record and the reconciliation
// rules that merge partial fragments from heterogeneous sources into it.
package domain

import "errors"

// ErrInvalidFragment is returned when a fragment has no date key. Callers
// reject such fragments before they reach the merge engine.
var ErrInvalidFragment = errors.New("fragment missing date")

// ErrRecordNotFound is returned when no record exists for a (user, date).
var ErrRecordNotFound = errors.New("day record not found")

// SleepData is the sleep category slot. PhasesPer5Min is a pipe-separated
// stage string (1=deep 2=light 3=rem 4=awake), one value per five minutes,
// anchored at BedtimeStart.
type SleepData struct {
	DurationHours  float64 `json:"duration_hours,omitempty"`
	Efficiency     float64 `json:"efficiency,omitempty"`
	DeepMin        float64 `json:"deep_min,omitempty"`
	RemMin         float64 `json:"rem_min,omitempty"`
	LightMin       float64 `json:"light_min,omitempty"`
	AwakeMin       float64 `json:"awake_min,omitempty"`
	ReadinessScore float64 `json:"readiness_score,omitempty"`
	PhasesPer5Min  string  `json:"phases_5min,omitempty"`
	BedtimeStart   string  `json:"bedtime_start,omitempty"`
	BedtimeEnd     string  `json:"bedtime_end,omitempty"`
}

// HeartSample is one discrete heart-rate reading.
type HeartSample struct {
	Timestamp string  `json:"ts"`
	BPM       float64 `json:"bpm"`
}

// HeartData is the heart category slot. Samples, unlike the sleep and
// workout encodings, is a list of discrete timestamped readings.
type HeartData struct {
	RestingHR float64       `json:"resting_hr,omitempty"`
	HRVAvg    float64       `json:"hrv_avg,omitempty"`
	HRMin     float64       `json:"hr_min,omitempty"`
	HRMax     float64       `json:"hr_max,omitempty"`
	Samples   []HeartSample `json:"samples,omitempty"`
}

// WorkoutData is the activity category slot. METItems holds MET values per
// five minutes anchored at METTimestamp; ClassPer5Min is the coarser
// activity-class string anchored at day start.
type WorkoutData struct {
	ActivityScore  float64   `json:"activity_score,omitempty"`
	CaloriesActive float64   `json:"calories_active,omitempty"`
	Steps          float64   `json:"steps,omitempty"`
	ActiveMin      float64   `json:"active_min,omitempty"`
	ClassPer5Min   string    `json:"class_5min,omitempty"`
	METItems       []float64 `json:"met_items,omitempty"`
	METTimestamp   string    `json:"met_timestamp,omitempty"`
}

// StressData is the stress category slot. DaySummary is provider-computed
// ("restored", "normal", "stressful") and passed through opaquely; it is
// never derived from the minute counts here.
type StressData struct {
	StressHighMin   float64 `json:"stress_high,omitempty"`
	RecoveryHighMin float64 `json:"recovery_high,omitempty"`
	DaySummary      string  `json:"day_summary,omitempty"`
}

// DayRecord is the canonical merged representation of one user's calendar
// day. Date (YYYY-MM-DD) is the sole identity key alongside the user; each
// category slot is independently optional.
type DayRecord struct {
	Date    string        `json:"date"`
	Source  string        `json:"source,omitempty"`
	Sleep   *SleepData    `json:"sleep,omitempty"`
	Heart   *HeartData    `json:"heart,omitempty"`
	Workout *WorkoutData  `json:"workout,omitempty"`
	Stress  *StressData   `json:"stress,omitempty"`
	Events  []HealthEvent `json:"events,omitempty"`
}

// Validate checks the merge precondition: a fragment without a date cannot
// be keyed.
func (d DayRecord) Validate() error {
	if d.Date == "" {
		return ErrInvalidFragment
	}
	return nil
}

// Empty reports whether the record carries no category data at all.
func (d DayRecord) Empty() bool {
	return d.Sleep == nil && d.Heart == nil && d.Workout == nil && d.Stress == nil && len(d.Events) == 0
}
