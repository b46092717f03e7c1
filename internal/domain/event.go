package domain

import (
	"time"

	"github.com/google/uuid"
)

// HealthEvent is a day-scoped annotation: a user-authored note or an
// ephemeral provider-detected episode (IsAuto). Events ride on the day
// record as an atomic field and are never merged across sources.
type HealthEvent struct {
	ID          string `json:"id"`
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	IsAuto      bool   `json:"is_auto,omitempty"`
}

// NewHealthEvent assigns a fresh ID to a user-authored event.
func NewHealthEvent(start, category, title string) HealthEvent {
	return HealthEvent{
		ID:       uuid.NewString(),
		Start:    start,
		Category: category,
		Title:    title,
	}
}

// DurationMinutes derives the event length from its start and end clock
// times, wrapping past midnight when end precedes start. Events without an
// end have zero duration.
func (e HealthEvent) DurationMinutes() int {
	if e.End == "" {
		return 0
	}
	start, err := time.Parse("15:04", e.Start)
	if err != nil {
		return 0
	}
	end, err := time.Parse("15:04", e.End)
	if err != nil {
		return 0
	}
	minutes := int(end.Sub(start).Minutes())
	if minutes < 0 {
		minutes += 24 * 60
	}
	return minutes
}
