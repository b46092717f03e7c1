package domain

import (
	"context"
	"fmt"
	"time"

	"example.com/healthsync/internal/observability"
)

// RecordStore captures the key-value upsert contract the reconciliation
// engine needs from persistence. No transaction or locking guarantee is
// assumed: read-merge-write against a (user, date) key is not atomic, so
// callers must not run concurrent writers against the same key.
type RecordStore interface {
	Get(ctx context.Context, userID, date string) (*DayRecord, error)
	Upsert(ctx context.Context, userID string, record DayRecord) error
	GetRange(ctx context.Context, userID, start, end string) ([]DayRecord, error)
	Dates(ctx context.Context, userID string) ([]string, error)
	DeleteAll(ctx context.Context, userID string) (int, error)
}

// Notifier publishes a signal after a day record changes so downstream
// consumers (dashboards, caches) can refresh.
type Notifier interface {
	DayUpdated(ctx context.Context, userID, date string) error
}

// NoopNotifier discards update signals.
type NoopNotifier struct{}

// DayUpdated implements Notifier.
func (NoopNotifier) DayUpdated(context.Context, string, string) error { return nil }

// Service drives merge-upserts against the record store.
type Service struct {
	store    RecordStore
	notifier Notifier
}

// NewService constructs a Service. A nil notifier disables notifications.
func NewService(store RecordStore, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Service{store: store, notifier: notifier}
}

// UpsertDay reads the current record for the fragment's date, merges under
// the given policy, and writes the result back.
func (s *Service) UpsertDay(ctx context.Context, userID string, fragment DayRecord, policy MergePolicy) error {
	if err := fragment.Validate(); err != nil {
		return err
	}
	existing, err := s.store.Get(ctx, userID, fragment.Date)
	if err != nil {
		return fmt.Errorf("load %s: %w", fragment.Date, err)
	}
	merged := Merge(existing, fragment, policy)
	if err := s.store.Upsert(ctx, userID, merged); err != nil {
		return fmt.Errorf("upsert %s: %w", fragment.Date, err)
	}
	observability.RecordMergedUpsert()
	// Notification failures must not fail the write.
	_ = s.notifier.DayUpdated(ctx, userID, fragment.Date)
	return nil
}

// UpsertDays merge-upserts a batch of fragments sequentially and returns
// the number accepted. Fragments without a date are skipped, matching the
// bulk import semantics of the original store.
func (s *Service) UpsertDays(ctx context.Context, userID string, fragments []DayRecord, policy MergePolicy) (int, error) {
	count := 0
	for _, fragment := range fragments {
		if fragment.Date == "" {
			continue
		}
		if err := s.UpsertDay(ctx, userID, fragment, policy); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// GetDay fetches a single record; ErrRecordNotFound when absent.
func (s *Service) GetDay(ctx context.Context, userID, date string) (*DayRecord, error) {
	record, err := s.store.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

// GetRange returns records between start and end inclusive, ascending by
// date.
func (s *Service) GetRange(ctx context.Context, userID, start, end string) ([]DayRecord, error) {
	return s.store.GetRange(ctx, userID, start, end)
}

// GetMonth returns the records of one calendar month ordered by date.
func (s *Service) GetMonth(ctx context.Context, userID string, year, month int) ([]DayRecord, error) {
	start := fmt.Sprintf("%04d-%02d-01", year, month)
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	end := fmt.Sprintf("%04d-%02d-%02d", year, month, lastDay)
	return s.store.GetRange(ctx, userID, start, end)
}

// Dates lists every date with a stored record, ascending.
func (s *Service) Dates(ctx context.Context, userID string) ([]string, error) {
	return s.store.Dates(ctx, userID)
}

// ClearAll deletes every record for the user and returns the count.
func (s *Service) ClearAll(ctx context.Context, userID string) (int, error) {
	return s.store.DeleteAll(ctx, userID)
}
