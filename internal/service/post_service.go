package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util"
)

const previewLen = 120

// PostService coordinates event update posts, comments and likes.
type PostService struct {
	posts      repository.PostRepository
	comments   repository.CommentRepository
	likes      repository.LikeRepository
	eventsRepo repository.EventRepository
	dispatcher events.Dispatcher
}

// PostDependencies bundles repositories for post service.
type PostDependencies struct {
	PostRepo    repository.PostRepository
	CommentRepo repository.CommentRepository
	LikeRepo    repository.LikeRepository
	EventRepo   repository.EventRepository
	Dispatcher  events.Dispatcher
}

// NewPostService builds the service.
func NewPostService(deps PostDependencies) *PostService {
	return &PostService{
		posts:      deps.PostRepo,
		comments:   deps.CommentRepo,
		likes:      deps.LikeRepo,
		eventsRepo: deps.EventRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreatePost publishes an update on an event managed by the actor.
func (s *PostService) CreatePost(ctx context.Context, actor Actor, eventID int64, title, body string) (*domain.Post, error) {
	if title == "" || body == "" {
		return nil, apperrors.NewValidationError("title and body required", nil)
	}

	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}
	if event.CreatedBy != actor.ID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("not the event manager")
	}

	post := &domain.Post{
		EventID:  eventID,
		AuthorID: actor.ID,
		Title:    title,
		Body:     body,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.PostCreated,
		EventID:   eventID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: time.Now(),
		Payload: events.PostCreatedPayload{
			PostID:      post.ID,
			Title:       post.Title,
			BodyPreview: preview(post.Body),
		},
	})
	return post, nil
}

// ListPosts returns updates for an event, newest first.
func (s *PostService) ListPosts(ctx context.Context, eventID int64, limit, offset int) ([]domain.Post, error) {
	return s.posts.ListByEvent(ctx, eventID, limit, offset)
}

// AddComment attaches a comment to a post.
func (s *PostService) AddComment(ctx context.Context, actor Actor, postID int64, body string) (*domain.Comment, error) {
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{PostID: postID, AuthorID: actor.ID, Body: body}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.CommentAdded,
		EventID:   post.EventID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: time.Now(),
		Payload: events.CommentAddedPayload{
			PostID:      postID,
			CommentID:   comment.ID,
			BodyPreview: preview(comment.Body),
		},
	})
	return comment, nil
}

// ListComments returns the comment thread for a post, oldest first.
func (s *PostService) ListComments(ctx context.Context, postID int64, limit, offset int) ([]domain.Comment, error) {
	if _, err := s.getPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, limit, offset)
}

// LikePost records the actor's like. Liking twice is a no-op.
func (s *PostService) LikePost(ctx context.Context, actor Actor, postID int64) (int, error) {
	if _, err := s.getPost(ctx, postID); err != nil {
		return 0, err
	}
	if _, err := s.likes.Like(ctx, postID, actor.ID); err != nil {
		return 0, err
	}
	return s.likes.Count(ctx, postID)
}

// UnlikePost removes the actor's like if present.
func (s *PostService) UnlikePost(ctx context.Context, actor Actor, postID int64) (int, error) {
	if _, err := s.getPost(ctx, postID); err != nil {
		return 0, err
	}
	if _, err := s.likes.Unlike(ctx, postID, actor.ID); err != nil {
		return 0, err
	}
	return s.likes.Count(ctx, postID)
}

func (s *PostService) getPost(ctx context.Context, postID int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("post", nil)
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, event)
	}
}

// preview truncates on a rune boundary so payloads stay valid UTF-8.
func preview(body string) string {
	if len(body) <= previewLen {
		return body
	}
	cut := previewLen
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}
