package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeNilExisting(t *testing.T) {
	incoming := DayRecord{
		Date:  "2024-03-01",
		Sleep: &SleepData{DurationHours: 7.5},
	}
	merged := Merge(nil, incoming, PolicyTruthyWins)
	require.Equal(t, incoming, merged)
	require.Nil(t, merged.Heart)
	require.Nil(t, merged.Workout)
	require.Nil(t, merged.Stress)
}

func TestMergeKeepsAbsentIncomingCategory(t *testing.T) {
	existing := DayRecord{
		Date:  "2024-03-01",
		Sleep: &SleepData{DurationHours: 7.5, Efficiency: 91, PhasesPer5Min: "2|2|1|3"},
	}
	incoming := DayRecord{
		Date:  "2024-03-01",
		Heart: &HeartData{RestingHR: 52},
	}
	merged := Merge(&existing, incoming, PolicyTruthyWins)
	require.Equal(t, existing.Sleep, merged.Sleep)
	require.Equal(t, 52.0, merged.Heart.RestingHR)
}

func TestMergeTruthyWins(t *testing.T) {
	existing := DayRecord{
		Date:    "2024-03-01",
		Workout: &WorkoutData{Steps: 5000, CaloriesActive: 420},
	}

	// A falsy incoming value never erases a truthy existing one.
	merged := Merge(&existing, DayRecord{
		Date:    "2024-03-01",
		Workout: &WorkoutData{Steps: 0, ActiveMin: 35},
	}, PolicyTruthyWins)
	require.Equal(t, 5000.0, merged.Workout.Steps)
	require.Equal(t, 420.0, merged.Workout.CaloriesActive)
	require.Equal(t, 35.0, merged.Workout.ActiveMin)

	// A truthy incoming value overwrites.
	merged = Merge(&existing, DayRecord{
		Date:    "2024-03-01",
		Workout: &WorkoutData{Steps: 7000},
	}, PolicyTruthyWins)
	require.Equal(t, 7000.0, merged.Workout.Steps)
}

func TestMergeIdempotent(t *testing.T) {
	existing := DayRecord{
		Date:  "2024-03-01",
		Sleep: &SleepData{DurationHours: 6.8, DeepMin: 95},
	}
	incoming := DayRecord{
		Date:    "2024-03-01",
		Sleep:   &SleepData{DurationHours: 7.2},
		Workout: &WorkoutData{Steps: 8200},
	}
	once := Merge(&existing, incoming, PolicyTruthyWins)
	twice := Merge(&once, incoming, PolicyTruthyWins)
	require.Equal(t, once, twice)
}

func TestMergeTimeseriesAtomic(t *testing.T) {
	existing := DayRecord{
		Date:  "2024-03-01",
		Sleep: &SleepData{PhasesPer5Min: "1|1|2|2", BedtimeStart: "2024-02-29T23:10:00"},
	}
	incoming := DayRecord{
		Date:  "2024-03-01",
		Sleep: &SleepData{PhasesPer5Min: "3|3|4", DurationHours: 5},
	}
	merged := Merge(&existing, incoming, PolicyTruthyWins)
	// The encoding swaps wholesale; no bin-level splicing.
	require.Equal(t, "3|3|4", merged.Sleep.PhasesPer5Min)
	require.Equal(t, "2024-02-29T23:10:00", merged.Sleep.BedtimeStart)
}

func TestMergeSourceOnlyWhenProvided(t *testing.T) {
	existing := DayRecord{Date: "2024-03-01", Source: "oura"}
	merged := Merge(&existing, DayRecord{Date: "2024-03-01"}, PolicyTruthyWins)
	require.Equal(t, "oura", merged.Source)

	merged = Merge(&existing, DayRecord{Date: "2024-03-01", Source: "csv-import"}, PolicyTruthyWins)
	require.Equal(t, "csv-import", merged.Source)
}

func TestMergeCloudAuthoritative(t *testing.T) {
	existing := DayRecord{
		Date:   "2024-03-01",
		Source: "oura",
		Sleep:  &SleepData{DurationHours: 7.5, Efficiency: 91},
	}
	incoming := DayRecord{
		Date:   "2024-03-01",
		Source: "local",
		Sleep:  &SleepData{DurationHours: 4.0},
		Heart:  &HeartData{RestingHR: 55},
	}
	merged := Merge(&existing, incoming, PolicyCloudAuthoritative)

	// Existing sleep wins outright; the richer local duration is discarded.
	require.Equal(t, 7.5, merged.Sleep.DurationHours)
	require.Equal(t, 91.0, merged.Sleep.Efficiency)
	// Missing categories fill from local.
	require.NotNil(t, merged.Heart)
	require.Equal(t, 55.0, merged.Heart.RestingHR)
	require.Equal(t, "oura", merged.Source)
}

func TestMergeEventsReplaceWholesale(t *testing.T) {
	existing := DayRecord{
		Date:   "2024-03-01",
		Events: []HealthEvent{{ID: "a", Start: "08:00", Title: "run"}},
	}
	merged := Merge(&existing, DayRecord{Date: "2024-03-01"}, PolicyTruthyWins)
	require.Len(t, merged.Events, 1)
	require.Equal(t, "a", merged.Events[0].ID)

	merged = Merge(&existing, DayRecord{
		Date:   "2024-03-01",
		Events: []HealthEvent{{ID: "b", Start: "09:00", Title: "yoga"}},
	}, PolicyTruthyWins)
	require.Len(t, merged.Events, 1)
	require.Equal(t, "b", merged.Events[0].ID)
}

func TestNewHealthEventAssignsID(t *testing.T) {
	a := NewHealthEvent("08:00", "exercise", "run")
	b := NewHealthEvent("08:00", "exercise", "run")
	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.False(t, a.IsAuto)
}

func TestHealthEventDuration(t *testing.T) {
	e := HealthEvent{Start: "22:30", End: "06:15"}
	require.Equal(t, 465, e.DurationMinutes())

	e = HealthEvent{Start: "08:00", End: "09:30"}
	require.Equal(t, 90, e.DurationMinutes())

	e = HealthEvent{Start: "08:00"}
	require.Equal(t, 0, e.DurationMinutes())
}

func TestValidateRejectsMissingDate(t *testing.T) {
	require.ErrorIs(t, DayRecord{}.Validate(), ErrInvalidFragment)
	require.NoError(t, DayRecord{Date: "2024-03-01"}.Validate())
}
