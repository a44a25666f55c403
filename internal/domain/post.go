package domain

import "time"

// Post is an update published on an event by its manager.
type Post struct {
	ID        int64
	EventID   int64
	AuthorID  int64
	Title     string
	Body      string
	LikeCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}
