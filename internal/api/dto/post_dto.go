package dto

import "time"

// PostRequest payload for publishing an event update.
type PostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CommentRequest payload.
type CommentRequest struct {
	Body string `json:"body"`
}

// PostResponse response shape.
type PostResponse struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentResponse response shape.
type CommentResponse struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeResponse reports the resulting like count.
type LikeResponse struct {
	PostID    int64 `json:"post_id"`
	LikeCount int   `json:"like_count"`
}
