package calendar

import "time"

// Event is a read-only view of an entry on the owner's provider calendar.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// Overlaps reports whether the event intersects the half-open range
// [start, end).
func (e Event) Overlaps(start, end time.Time) bool {
	return start.Before(e.End) && end.After(e.Start)
}

// EventRef identifies an event created or touched by an executed action.
type EventRef struct {
	EventID string `json:"event_id"`
}
