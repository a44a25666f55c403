package domain

import "time"

// Like marks that a user liked a post. Unique per (post, user).
type Like struct {
	PostID    int64
	UserID    int64
	CreatedAt time.Time
}
