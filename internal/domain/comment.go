package domain

import "time"

// Comment is a user reply attached to a post.
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Body      string
	CreatedAt time.Time
}
