package domain

// MergePolicy names the reconciliation strategy applied when an incoming
// fragment meets an existing record. The original storage layers grew three
// near-identical merge code paths; here the policy is an explicit parameter
// of the one Merge function.
type MergePolicy int

const (
	// PolicyTruthyWins merges field-by-field within each category: an
	// incoming field overwrites only when it carries a value (non-zero,
	// non-empty). A partial re-fetch can never erase a richer existing
	// reading. This is the default for provider sync and file import.
	PolicyTruthyWins MergePolicy = iota

	// PolicyCloudAuthoritative inverts precedence at the category level:
	// an existing category wins outright and the incoming category is
	// discarded; incoming data only fills categories that are missing.
	// Reserved for the local-to-cloud migration path.
	PolicyCloudAuthoritative
)

// Merge reconciles an incoming fragment into an existing record. A nil
// existing record yields the incoming fragment as-is. Categories absent on
// the incoming side are always kept from the existing record, regardless
// of policy. Merge never fails for well-formed fragments; fragments missing
// the date key must be rejected by the caller beforehand.
func Merge(existing *DayRecord, incoming DayRecord, policy MergePolicy) DayRecord {
	if existing == nil {
		return incoming
	}

	out := DayRecord{Date: existing.Date}
	if policy == PolicyCloudAuthoritative {
		out.Source = firstNonEmpty(existing.Source, incoming.Source)
		out.Sleep = pickSleep(existing.Sleep, incoming.Sleep)
		out.Heart = pickHeart(existing.Heart, incoming.Heart)
		out.Workout = pickWorkout(existing.Workout, incoming.Workout)
		out.Stress = pickStress(existing.Stress, incoming.Stress)
	} else {
		out.Source = firstNonEmpty(incoming.Source, existing.Source)
		out.Sleep = mergeSleep(existing.Sleep, incoming.Sleep)
		out.Heart = mergeHeart(existing.Heart, incoming.Heart)
		out.Workout = mergeWorkout(existing.Workout, incoming.Workout)
		out.Stress = mergeStress(existing.Stress, incoming.Stress)
	}

	// Events are atomic: an incoming list replaces the stored one wholesale.
	out.Events = existing.Events
	if len(incoming.Events) > 0 {
		out.Events = incoming.Events
	}
	return out
}

func mergeSleep(existing, incoming *SleepData) *SleepData {
	if incoming == nil {
		return existing
	}
	if existing == nil {
		clone := *incoming
		return &clone
	}
	out := *existing
	out.DurationHours = pickFloat(existing.DurationHours, incoming.DurationHours)
	out.Efficiency = pickFloat(existing.Efficiency, incoming.Efficiency)
	out.DeepMin = pickFloat(existing.DeepMin, incoming.DeepMin)
	out.RemMin = pickFloat(existing.RemMin, incoming.RemMin)
	out.LightMin = pickFloat(existing.LightMin, incoming.LightMin)
	out.AwakeMin = pickFloat(existing.AwakeMin, incoming.AwakeMin)
	out.ReadinessScore = pickFloat(existing.ReadinessScore, incoming.ReadinessScore)
	out.PhasesPer5Min = firstNonEmpty(incoming.PhasesPer5Min, existing.PhasesPer5Min)
	out.BedtimeStart = firstNonEmpty(incoming.BedtimeStart, existing.BedtimeStart)
	out.BedtimeEnd = firstNonEmpty(incoming.BedtimeEnd, existing.BedtimeEnd)
	return &out
}

func mergeHeart(existing, incoming *HeartData) *HeartData {
	if incoming == nil {
		return existing
	}
	if existing == nil {
		clone := *incoming
		return &clone
	}
	out := *existing
	out.RestingHR = pickFloat(existing.RestingHR, incoming.RestingHR)
	out.HRVAvg = pickFloat(existing.HRVAvg, incoming.HRVAvg)
	out.HRMin = pickFloat(existing.HRMin, incoming.HRMin)
	out.HRMax = pickFloat(existing.HRMax, incoming.HRMax)
	if len(incoming.Samples) > 0 {
		out.Samples = incoming.Samples
	}
	return &out
}

func mergeWorkout(existing, incoming *WorkoutData) *WorkoutData {
	if incoming == nil {
		return existing
	}
	if existing == nil {
		clone := *incoming
		return &clone
	}
	out := *existing
	out.ActivityScore = pickFloat(existing.ActivityScore, incoming.ActivityScore)
	out.CaloriesActive = pickFloat(existing.CaloriesActive, incoming.CaloriesActive)
	out.Steps = pickFloat(existing.Steps, incoming.Steps)
	out.ActiveMin = pickFloat(existing.ActiveMin, incoming.ActiveMin)
	out.ClassPer5Min = firstNonEmpty(incoming.ClassPer5Min, existing.ClassPer5Min)
	if len(incoming.METItems) > 0 {
		out.METItems = incoming.METItems
	}
	out.METTimestamp = firstNonEmpty(incoming.METTimestamp, existing.METTimestamp)
	return &out
}

func mergeStress(existing, incoming *StressData) *StressData {
	if incoming == nil {
		return existing
	}
	if existing == nil {
		clone := *incoming
		return &clone
	}
	out := *existing
	out.StressHighMin = pickFloat(existing.StressHighMin, incoming.StressHighMin)
	out.RecoveryHighMin = pickFloat(existing.RecoveryHighMin, incoming.RecoveryHighMin)
	out.DaySummary = firstNonEmpty(incoming.DaySummary, existing.DaySummary)
	return &out
}

func pickSleep(existing, incoming *SleepData) *SleepData {
	if existing != nil {
		return existing
	}
	return incoming
}

func pickHeart(existing, incoming *HeartData) *HeartData {
	if existing != nil {
		return existing
	}
	return incoming
}

func pickWorkout(existing, incoming *WorkoutData) *WorkoutData {
	if existing != nil {
		return existing
	}
	return incoming
}

func pickStress(existing, incoming *StressData) *StressData {
	if existing != nil {
		return existing
	}
	return incoming
}

// pickFloat keeps the existing value unless the incoming one is truthy.
func pickFloat(existing, incoming float64) float64 {
	if incoming != 0 {
		return incoming
	}
	return existing
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
