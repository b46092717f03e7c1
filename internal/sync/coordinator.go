// Package sync orchestrates multi-endpoint provider fetches and drives the
// results through the reconciliation engine.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"example.com/healthsync/internal/adapter"
	"example.com/healthsync/internal/domain"
	"example.com/healthsync/internal/observability"
	"example.com/healthsync/internal/oura"
)

// Fetcher is the provider-client surface the coordinator needs.
type Fetcher interface {
	FetchRange(ctx context.Context, token string, ep oura.Endpoint, startDate, endDate string) ([]byte, error)
}

// DateRange bounds a sync pass with inclusive calendar dates.
type DateRange struct {
	Start string
	End   string
}

// Summary is the always-returned outcome of a sync pass: per-category
// record counts plus the errors of endpoints that failed. A pass never
// throws past the coordinator; partial success stays actionable.
type Summary struct {
	Sleep       int      `json:"sleep"`
	Heart       int      `json:"heart"`
	Workout     int      `json:"workout"`
	Stress      int      `json:"stress"`
	Errors      []string `json:"errors,omitempty"`
	NeedsReauth bool     `json:"needs_reauth,omitempty"`
}

// Total sums the per-category counts.
func (s Summary) Total() int {
	return s.Sleep + s.Heart + s.Workout + s.Stress
}

// endpointSpec binds a provider endpoint to its adapter and its count slot.
type endpointSpec struct {
	endpoint  oura.Endpoint
	normalize func([]byte) []domain.DayRecord
	count     func(*Summary, int)
}

// Option configures optional coordinator behaviour.
type Option func(*Coordinator)

// WithLogger overrides the logger used to report endpoint failures.
func WithLogger(logger *log.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// Coordinator walks provider endpoints sequentially and merge-upserts
// their fragments. Sequential execution is deliberate: the store's
// read-merge-write per (user, date) key is not atomic, so concurrent
// endpoint fetches could race on days that appear in several categories.
type Coordinator struct {
	fetcher Fetcher
	service *domain.Service
	specs   []endpointSpec
	logger  *log.Logger
}

// NewCoordinator constructs a Coordinator over the standard endpoint set.
func NewCoordinator(fetcher Fetcher, service *domain.Service, opts ...Option) *Coordinator {
	eps := oura.Endpoints()
	c := &Coordinator{
		fetcher: fetcher,
		service: service,
		specs: []endpointSpec{
			{eps[0], adapter.NormalizeSleep, func(s *Summary, n int) { s.Sleep += n }},
			{eps[1], adapter.NormalizeHeartRate, func(s *Summary, n int) { s.Heart += n }},
			{eps[2], adapter.NormalizeActivity, func(s *Summary, n int) { s.Workout += n }},
			{eps[3], adapter.NormalizeStress, func(s *Summary, n int) { s.Stress += n }},
		},
		logger: log.New(log.Writer(), "[sync] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SyncFromProvider runs one pass: fetch each endpoint for the range,
// normalize, merge-upsert. An authorization failure is terminal for the
// pass — remaining endpoints are not attempted and NeedsReauth is set. Any
// other endpoint failure is recorded and the pass continues.
func (c *Coordinator) SyncFromProvider(ctx context.Context, userID, token string, dateRange DateRange) Summary {
	var summary Summary
	for _, spec := range c.specs {
		payload, err := c.fetcher.FetchRange(ctx, token, spec.endpoint, dateRange.Start, dateRange.End)
		if err != nil {
			if errors.Is(err, oura.ErrAuthorizationExpired) || errors.Is(err, oura.ErrNoToken) {
				c.logger.Printf("endpoint %s: authorization expired, aborting pass", spec.endpoint.Name)
				summary.NeedsReauth = true
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", spec.endpoint.Name, err))
				observability.RecordSyncError(spec.endpoint.Name)
				return summary
			}
			c.logger.Printf("endpoint %s failed: %v", spec.endpoint.Name, err)
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", spec.endpoint.Name, err))
			observability.RecordSyncError(spec.endpoint.Name)
			continue
		}

		fragments := spec.normalize(payload)
		count, err := c.service.UpsertDays(ctx, userID, fragments, domain.PolicyTruthyWins)
		spec.count(&summary, count)
		if err != nil {
			c.logger.Printf("endpoint %s: upsert failed after %d records: %v", spec.endpoint.Name, count, err)
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", spec.endpoint.Name, err))
			observability.RecordSyncError(spec.endpoint.Name)
			continue
		}
		observability.RecordRecordsSynced(spec.endpoint.Name, count)
	}
	observability.RecordSyncPass(time.Now().UTC())
	return summary
}

// MigrateLocalToCloud bulk-imports locally held records into the cloud
// store under the cloud-authoritative policy: categories that already
// exist server-side win outright, local data only fills gaps.
func (c *Coordinator) MigrateLocalToCloud(ctx context.Context, userID string, records []domain.DayRecord) (int, error) {
	return c.service.UpsertDays(ctx, userID, records, domain.PolicyCloudAuthoritative)
}

// Import bulk-upserts already-normalized fragments under the default
// policy, for the file-import path.
func (c *Coordinator) Import(ctx context.Context, userID string, records []domain.DayRecord) (int, error) {
	return c.service.UpsertDays(ctx, userID, records, domain.PolicyTruthyWins)
}
