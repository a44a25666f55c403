package domain

import "time"

// Registration links a volunteer to an event. At most one per
// (event, user) pair.
type Registration struct {
	ID        int64
	EventID   int64
	UserID    int64
	CreatedAt time.Time
}
