package domain

import "time"

// EventStatus represents lifecycle states for a volunteer event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// Event is a volunteer event that users can register for.
type Event struct {
	ID          int64
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	Capacity    int
	Status      EventStatus
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
