// Package api exposes HTTP handlers for the health sync service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/healthsync/internal/adapter"
	"example.com/healthsync/internal/auth"
	"example.com/healthsync/internal/domain"
	syncer "example.com/healthsync/internal/sync"
)

// Handler coordinates HTTP requests with the domain service and the sync
// coordinator.
type Handler struct {
	service      *domain.Service
	coordinator  *syncer.Coordinator
	syncLookback int
}

// NewHandler builds a Handler. syncLookback is the default number of days
// fetched when a sync request carries no explicit range.
func NewHandler(service *domain.Service, coordinator *syncer.Coordinator, syncLookback int) *Handler {
	if syncLookback <= 0 {
		syncLookback = 7
	}
	return &Handler{service: service, coordinator: coordinator, syncLookback: syncLookback}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/records", h.records)
	mux.HandleFunc("/v1/records/month", h.month)
	mux.HandleFunc("/v1/records/intraday", h.intraday)
	mux.HandleFunc("/v1/sync", h.sync)
	mux.HandleFunc("/v1/migrate", h.migrate)
	mux.HandleFunc("/v1/import", h.importFile)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listRecords(w, r)
	case http.MethodPost:
		h.upsertRecord(w, r)
	case http.MethodPut:
		h.bulkUpsert(w, r)
	case http.MethodDelete:
		h.clearRecords(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeRead, auth.ScopeWrite)
	if !ok {
		return
	}

	if r.URL.Query().Get("dates_only") == "true" {
		dates, err := h.service.Dates(r.Context(), claims.Subject)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, DatesResponse{Dates: dates})
		return
	}

	if date := r.URL.Query().Get("date"); date != "" {
		record, err := h.service.GetDay(r.Context(), claims.Subject, date)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				writeError(w, http.StatusNotFound, "not_found", "no record for "+date)
				return
			}
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, record)
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "start and end parameters are required")
		return
	}

	records, err := h.service.GetRange(r.Context(), claims.Subject, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, RecordsResponse{Items: records})
}

func (h *Handler) upsertRecord(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var fragment domain.DayRecord
	if err := json.NewDecoder(r.Body).Decode(&fragment); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := h.service.UpsertDay(r.Context(), claims.Subject, fragment, domain.PolicyTruthyWins); err != nil {
		if errors.Is(err, domain.ErrInvalidFragment) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, UpsertResponse{Date: fragment.Date, Count: 1})
}

func (h *Handler) bulkUpsert(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req BulkUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "records is required")
		return
	}

	count, err := h.service.UpsertDays(r.Context(), claims.Subject, req.Records, domain.PolicyTruthyWins)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, UpsertResponse{Count: count})
}

func (h *Handler) clearRecords(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	deleted, err := h.service.ClearAll(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}

func (h *Handler) month(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeRead, auth.ScopeWrite)
	if !ok {
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid year parameter")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid month parameter")
		return
	}

	records, err := h.service.GetMonth(r.Context(), claims.Subject, year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, RecordsResponse{Items: records})
}

func (h *Handler) intraday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeRead, auth.ScopeWrite)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "date parameter is required")
		return
	}

	// Noon-to-noon keeps a night's sleep contiguous on the chart.
	windowStart := 12.0
	if raw := r.URL.Query().Get("window_start"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed >= 24 {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid window_start parameter")
			return
		}
		windowStart = parsed
	}

	record, err := h.service.GetDay(r.Context(), claims.Subject, date)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no record for "+date)
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, domain.BuildIntraday(*record, windowStart))
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	dateRange := syncer.DateRange{Start: req.Start, End: req.End}
	if dateRange.Start == "" || dateRange.End == "" {
		now := time.Now().UTC()
		dateRange.End = now.Format("2006-01-02")
		dateRange.Start = now.AddDate(0, 0, -h.syncLookback).Format("2006-01-02")
	}

	summary := h.coordinator.SyncFromProvider(r.Context(), claims.Subject, req.Token, dateRange)
	status := http.StatusOK
	if summary.NeedsReauth {
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, summary)
}

func (h *Handler) migrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req MigrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "records is required")
		return
	}

	count, err := h.coordinator.MigrateLocalToCloud(r.Context(), claims.Subject, req.Records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, UpsertResponse{Count: count})
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeWrite)
	if !ok {
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	records, err := adapter.ImportFile(req.Filename, req.Text)
	if err != nil {
		if errors.Is(err, adapter.ErrUnsupportedFormat) {
			writeError(w, http.StatusUnsupportedMediaType, "unsupported_format", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	count, err := h.coordinator.Import(r.Context(), claims.Subject, records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Count: count, Parsed: len(records)})
}

// requireScope extracts claims and enforces that at least one of the given
// scopes is present. It writes the error response itself on failure.
func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", fmt.Sprintf("scope %s required", scopes[0]))
	return nil, false
}

// SyncRequest is the payload for POST /v1/sync.
type SyncRequest struct {
	Token string `json:"token"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Validate ensures request correctness.
func (r SyncRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return errors.New("token is required")
	}
	if (r.Start == "") != (r.End == "") {
		return errors.New("start and end must be provided together")
	}
	return nil
}

// MigrateRequest is the payload for POST /v1/migrate.
type MigrateRequest struct {
	Records []domain.DayRecord `json:"records"`
}

// ImportRequest is the payload for POST /v1/import.
type ImportRequest struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// Validate ensures request correctness.
func (r ImportRequest) Validate() error {
	if strings.TrimSpace(r.Filename) == "" {
		return errors.New("filename is required")
	}
	if r.Text == "" {
		return errors.New("text is required")
	}
	return nil
}

// BulkUpsertRequest is the payload for PUT /v1/records.
type BulkUpsertRequest struct {
	Records []domain.DayRecord `json:"records"`
}

// RecordsResponse packages range and month results.
type RecordsResponse struct {
	Items []domain.DayRecord `json:"items"`
}

// DatesResponse lists the dates that hold a record.
type DatesResponse struct {
	Dates []string `json:"dates"`
}

// UpsertResponse reports how many fragments were accepted.
type UpsertResponse struct {
	Date  string `json:"date,omitempty"`
	Count int    `json:"count"`
}

// DeleteResponse reports how many records were removed.
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

// ImportResponse reports parse and merge counts for a file import.
type ImportResponse struct {
	Count  int `json:"count"`
	Parsed int `json:"parsed"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
