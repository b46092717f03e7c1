package adapter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"example.com/healthsync/internal/domain"
)

// ErrUnsupportedFormat rejects an import file whose extension has no
// adapter. The whole file is rejected; there is no partial import.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ImportFile dispatches file content to the matching adapter by extension.
func ImportFile(filename, text string) ([]domain.DayRecord, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "json":
		return NormalizeJSON([]byte(text))
	case "csv":
		return NormalizeCSV(text)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// NormalizeJSON accepts canonical-shaped records: a single day object, a
// bare array, or an object with a "records" or "days" array. Entries
// without a date are dropped.
func NormalizeJSON(payload []byte) ([]domain.DayRecord, error) {
	var records []domain.DayRecord

	var single domain.DayRecord
	if err := json.Unmarshal(payload, &single); err == nil && single.Date != "" {
		return []domain.DayRecord{single}, nil
	}

	if err := json.Unmarshal(payload, &records); err == nil {
		return keepDated(records), nil
	}

	var wrapped struct {
		Records []domain.DayRecord `json:"records"`
		Days    []domain.DayRecord `json:"days"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("parse json import: %w", err)
	}
	if len(wrapped.Records) > 0 {
		return keepDated(wrapped.Records), nil
	}
	return keepDated(wrapped.Days), nil
}

func keepDated(records []domain.DayRecord) []domain.DayRecord {
	out := records[:0]
	for _, record := range records {
		if record.Date != "" {
			out = append(out, record)
		}
	}
	return out
}

// csvSetters maps header column names onto flattened canonical fields.
// Column names follow the wire names of the category slots.
var csvSetters = map[string]func(*domain.DayRecord, string){
	"source": func(d *domain.DayRecord, v string) { d.Source = v },

	"sleep_duration":  func(d *domain.DayRecord, v string) { ensureSleep(d).DurationHours = parseNum(v) },
	"duration_hours":  func(d *domain.DayRecord, v string) { ensureSleep(d).DurationHours = parseNum(v) },
	"efficiency":      func(d *domain.DayRecord, v string) { ensureSleep(d).Efficiency = parseNum(v) },
	"deep_min":        func(d *domain.DayRecord, v string) { ensureSleep(d).DeepMin = parseNum(v) },
	"rem_min":         func(d *domain.DayRecord, v string) { ensureSleep(d).RemMin = parseNum(v) },
	"light_min":       func(d *domain.DayRecord, v string) { ensureSleep(d).LightMin = parseNum(v) },
	"awake_min":       func(d *domain.DayRecord, v string) { ensureSleep(d).AwakeMin = parseNum(v) },
	"readiness_score": func(d *domain.DayRecord, v string) { ensureSleep(d).ReadinessScore = parseNum(v) },

	"resting_hr": func(d *domain.DayRecord, v string) { ensureHeart(d).RestingHR = parseNum(v) },
	"hrv_avg":    func(d *domain.DayRecord, v string) { ensureHeart(d).HRVAvg = parseNum(v) },
	"hr_min":     func(d *domain.DayRecord, v string) { ensureHeart(d).HRMin = parseNum(v) },
	"hr_max":     func(d *domain.DayRecord, v string) { ensureHeart(d).HRMax = parseNum(v) },

	"activity_score":  func(d *domain.DayRecord, v string) { ensureWorkout(d).ActivityScore = parseNum(v) },
	"calories_active": func(d *domain.DayRecord, v string) { ensureWorkout(d).CaloriesActive = parseNum(v) },
	"steps":           func(d *domain.DayRecord, v string) { ensureWorkout(d).Steps = parseNum(v) },
	"active_min":      func(d *domain.DayRecord, v string) { ensureWorkout(d).ActiveMin = parseNum(v) },

	"stress_high":   func(d *domain.DayRecord, v string) { ensureStress(d).StressHighMin = parseNum(v) },
	"recovery_high": func(d *domain.DayRecord, v string) { ensureStress(d).RecoveryHighMin = parseNum(v) },
	"day_summary":   func(d *domain.DayRecord, v string) { ensureStress(d).DaySummary = v },
}

// NormalizeCSV parses delimited rows into day fragments. The header row
// names flattened canonical fields; a "date" column is required. Unknown
// columns and unparseable cells are skipped, a row without a date is
// dropped.
func NormalizeCSV(text string) ([]domain.DayRecord, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv import: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	dateCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "date") {
			dateCol = i
			break
		}
	}
	if dateCol < 0 {
		return nil, errors.New("csv import: missing date column")
	}

	var out []domain.DayRecord
	for _, row := range rows[1:] {
		if dateCol >= len(row) || strings.TrimSpace(row[dateCol]) == "" {
			continue
		}
		record := domain.DayRecord{
			Date:   strings.TrimSpace(row[dateCol]),
			Source: "csv-import",
		}
		for i, cell := range row {
			if i == dateCol || i >= len(header) {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			column := strings.ToLower(strings.TrimSpace(header[i]))
			set, ok := csvSetters[column]
			if !ok {
				continue
			}
			if !textColumns[column] && !isNumeric(cell) {
				// Unparseable metric cells are dropped, not the row.
				continue
			}
			set(&record, cell)
		}
		if !record.Empty() {
			out = append(out, record)
		}
	}
	return out, nil
}

func ensureSleep(d *domain.DayRecord) *domain.SleepData {
	if d.Sleep == nil {
		d.Sleep = &domain.SleepData{}
	}
	return d.Sleep
}

func ensureHeart(d *domain.DayRecord) *domain.HeartData {
	if d.Heart == nil {
		d.Heart = &domain.HeartData{}
	}
	return d.Heart
}

func ensureWorkout(d *domain.DayRecord) *domain.WorkoutData {
	if d.Workout == nil {
		d.Workout = &domain.WorkoutData{}
	}
	return d.Workout
}

func ensureStress(d *domain.DayRecord) *domain.StressData {
	if d.Stress == nil {
		d.Stress = &domain.StressData{}
	}
	return d.Stress
}

// textColumns hold free-text values and skip the numeric check.
var textColumns = map[string]bool{
	"source":      true,
	"day_summary": true,
}

func isNumeric(v string) bool {
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

func parseNum(v string) float64 {
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return parsed
}
