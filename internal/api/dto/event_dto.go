package dto

import (
	"time"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// EventRequest payload for creating or updating an event.
type EventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
}

// CancelEventRequest payload.
type CancelEventRequest struct {
	Reason string `json:"reason"`
}

// EventResponse response shape.
type EventResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	StartsAt    time.Time          `json:"starts_at"`
	EndsAt      time.Time          `json:"ends_at"`
	Capacity    int                `json:"capacity"`
	Status      domain.EventStatus `json:"status"`
	CreatedBy   int64              `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
}

// RegistrationResponse response shape.
type RegistrationResponse struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
