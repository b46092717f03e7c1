// Package postgres provides the pgx-backed record store. Category slots
// are stored as JSONB columns under a (user_id, date) primary key, so
// upserts replace the whole row — reconciliation happens in the domain
// layer before the write.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/healthsync/internal/domain"
)

// Repository implements domain.RecordStore on a pgx connection pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Schema is the DDL for the record table, applied by deploy tooling and
// the integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS health_records (
    user_id    TEXT        NOT NULL,
    date       TEXT        NOT NULL,
    source     TEXT,
    sleep      JSONB,
    heart      JSONB,
    workout    JSONB,
    stress     JSONB,
    events     JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (user_id, date)
);
`

const recordColumns = `source, sleep, heart, workout, stress, events`

// Get fetches the record for (user, date); nil when absent.
func (r *Repository) Get(ctx context.Context, userID, date string) (*domain.DayRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM health_records WHERE user_id=$1 AND date=$2`

	row := r.pool.QueryRow(ctx, query, userID, date)
	record, err := scanRecord(row, date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// Upsert writes the full record under its (user, date) key.
func (r *Repository) Upsert(ctx context.Context, userID string, record domain.DayRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	sleep, err := marshalSlot(record.Sleep)
	if err != nil {
		return err
	}
	heart, err := marshalSlot(record.Heart)
	if err != nil {
		return err
	}
	workout, err := marshalSlot(record.Workout)
	if err != nil {
		return err
	}
	stress, err := marshalSlot(record.Stress)
	if err != nil {
		return err
	}
	var events any
	if len(record.Events) > 0 {
		raw, err := json.Marshal(record.Events)
		if err != nil {
			return err
		}
		events = raw
	}

	const stmt = `INSERT INTO health_records (user_id, date, source, sleep, heart, workout, stress, events, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (user_id, date) DO UPDATE SET
            source=EXCLUDED.source,
            sleep=EXCLUDED.sleep,
            heart=EXCLUDED.heart,
            workout=EXCLUDED.workout,
            stress=EXCLUDED.stress,
            events=EXCLUDED.events,
            updated_at=EXCLUDED.updated_at`

	_, err = r.pool.Exec(ctx, stmt,
		userID,
		record.Date,
		nullIfEmpty(record.Source),
		sleep,
		heart,
		workout,
		stress,
		events,
		time.Now().UTC(),
	)
	return err
}

// GetRange returns records with start <= date <= end, ascending.
func (r *Repository) GetRange(ctx context.Context, userID, start, end string) ([]domain.DayRecord, error) {
	const query = `SELECT date, ` + recordColumns + ` FROM health_records
        WHERE user_id=$1 AND date>=$2 AND date<=$3 ORDER BY date ASC`

	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DayRecord
	for rows.Next() {
		var (
			date   string
			source *string
			slots  [5][]byte
		)
		if err := rows.Scan(&date, &source, &slots[0], &slots[1], &slots[2], &slots[3], &slots[4]); err != nil {
			return nil, err
		}
		record, err := buildRecord(date, source, slots)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	return out, rows.Err()
}

// Dates lists every stored date for the user, ascending.
func (r *Repository) Dates(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT date FROM health_records WHERE user_id=$1 ORDER BY date ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

// DeleteAll removes every record for the user and returns the count.
func (r *Repository) DeleteAll(ctx context.Context, userID string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM health_records WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanRecord(row pgx.Row, date string) (*domain.DayRecord, error) {
	var (
		source *string
		slots  [5][]byte
	)
	if err := row.Scan(&source, &slots[0], &slots[1], &slots[2], &slots[3], &slots[4]); err != nil {
		return nil, err
	}
	return buildRecord(date, source, slots)
}

func buildRecord(date string, source *string, slots [5][]byte) (*domain.DayRecord, error) {
	record := domain.DayRecord{Date: date}
	if source != nil {
		record.Source = *source
	}
	if err := unmarshalSlot(slots[0], &record.Sleep); err != nil {
		return nil, fmt.Errorf("record %s: sleep: %w", date, err)
	}
	if err := unmarshalSlot(slots[1], &record.Heart); err != nil {
		return nil, fmt.Errorf("record %s: heart: %w", date, err)
	}
	if err := unmarshalSlot(slots[2], &record.Workout); err != nil {
		return nil, fmt.Errorf("record %s: workout: %w", date, err)
	}
	if err := unmarshalSlot(slots[3], &record.Stress); err != nil {
		return nil, fmt.Errorf("record %s: stress: %w", date, err)
	}
	if len(slots[4]) > 0 {
		if err := json.Unmarshal(slots[4], &record.Events); err != nil {
			return nil, fmt.Errorf("record %s: events: %w", date, err)
		}
	}
	return &record, nil
}

// marshalSlot serialises a category pointer, keeping SQL NULL for absent
// slots so category independence survives the round trip.
func marshalSlot(slot any) (any, error) {
	if isNilPointer(slot) {
		return nil, nil
	}
	return json.Marshal(slot)
}

func unmarshalSlot[T any](raw []byte, target **T) error {
	if len(raw) == 0 {
		return nil
	}
	value := new(T)
	if err := json.Unmarshal(raw, value); err != nil {
		return err
	}
	*target = value
	return nil
}

func isNilPointer(slot any) bool {
	switch v := slot.(type) {
	case *domain.SleepData:
		return v == nil
	case *domain.HeartData:
		return v == nil
	case *domain.WorkoutData:
		return v == nil
	case *domain.StressData:
		return v == nil
	default:
		return slot == nil
	}
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
