package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/api/dto"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/service"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util"
)

// PostsHandler manages event update posts, comments and likes.
type PostsHandler struct {
	service *service.PostService
}

// NewPostsHandler constructs handler.
func NewPostsHandler(postService *service.PostService) *PostsHandler {
	return &PostsHandler{service: postService}
}

// CreatePost POST /events/:id/posts.
func (h *PostsHandler) CreatePost(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	post, err := h.service.CreatePost(c.Context(), actor, eventID, req.Title, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": postResponse(post)})
}

// ListPosts GET /events/:id/posts.
func (h *PostsHandler) ListPosts(c *fiber.Ctx) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	posts, err := h.service.ListPosts(c.Context(), eventID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, postResponse(&posts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /posts/:id/comments.
func (h *PostsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.AddComment(c.Context(), actor, postID, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /posts/:id/comments.
func (h *PostsHandler) ListComments(c *fiber.Ctx) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	comments, err := h.service.ListComments(c.Context(), postID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// LikePost PUT /posts/:id/like.
func (h *PostsHandler) LikePost(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	count, err := h.service.LikePost(c.Context(), actor, postID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LikeResponse{PostID: postID, LikeCount: count}})
}

// UnlikePost DELETE /posts/:id/like.
func (h *PostsHandler) UnlikePost(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	count, err := h.service.UnlikePost(c.Context(), actor, postID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LikeResponse{PostID: postID, LikeCount: count}})
}

func postResponse(post *domain.Post) dto.PostResponse {
	return dto.PostResponse{
		ID:        post.ID,
		EventID:   post.EventID,
		AuthorID:  post.AuthorID,
		Title:     post.Title,
		Body:      post.Body,
		LikeCount: post.LikeCount,
		CreatedAt: post.CreatedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}
