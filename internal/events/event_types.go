package events

import (
	"time"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPublished        EventType = "event_published"
	EventCancelled        EventType = "event_cancelled"
	VolunteerRegistered   EventType = "volunteer_registered"
	RegistrationCancelled EventType = "registration_cancelled"
	PostCreated           EventType = "post_created"
	CommentAdded          EventType = "comment_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EventID   int64       `json:"event_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EventPublishedPayload payload.
type EventPublishedPayload struct {
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	Capacity int       `json:"capacity"`
}

// EventCancelledPayload payload.
type EventCancelledPayload struct {
	Title  string `json:"title"`
	Reason string `json:"reason,omitempty"`
}

// VolunteerRegisteredPayload payload.
type VolunteerRegisteredPayload struct {
	RegistrationID int64 `json:"registration_id"`
	Registered     int   `json:"registered"`
	Capacity       int   `json:"capacity"`
}

// PostCreatedPayload payload.
type PostCreatedPayload struct {
	PostID      int64  `json:"post_id"`
	Title       string `json:"title"`
	BodyPreview string `json:"body_preview"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	PostID      int64  `json:"post_id"`
	CommentID   int64  `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}
