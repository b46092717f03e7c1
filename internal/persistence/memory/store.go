// Package memory is a map-backed record store for tests and local-only
// deployments. It mirrors the keyed localStorage model the cloud store
// replaced: one entry per (user, date), no transactions.
package memory

import (
	"context"
	"sort"
	"sync"

	"example.com/healthsync/internal/domain"
)

// Store implements domain.RecordStore in process memory. The mutex guards
// the maps so read paths can run alongside a writer; it does not make
// read-merge-write atomic — callers serialize writes per key.
type Store struct {
	mu      sync.RWMutex
	records map[string]map[string]domain.DayRecord
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]map[string]domain.DayRecord)}
}

// Get returns the record for (user, date), or nil when absent.
func (s *Store) Get(_ context.Context, userID, date string) (*domain.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID][date]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Upsert writes the record under its date key.
func (s *Store) Upsert(_ context.Context, userID string, record domain.DayRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[userID] == nil {
		s.records[userID] = make(map[string]domain.DayRecord)
	}
	s.records[userID][record.Date] = record
	return nil
}

// GetRange returns records with start <= date <= end, ascending by date.
func (s *Store) GetRange(_ context.Context, userID, start, end string) ([]domain.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DayRecord
	for date, record := range s.records[userID] {
		if date >= start && date <= end {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Dates lists every stored date for the user, ascending.
func (s *Store) Dates(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.records[userID]))
	for date := range s.records[userID] {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// DeleteAll removes every record for the user and returns the count.
func (s *Store) DeleteAll(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.records[userID])
	delete(s.records, userID)
	return count, nil
}
