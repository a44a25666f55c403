package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// PostRepository manages event update posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	ListByEvent(ctx context.Context, eventID int64, limit, offset int) ([]domain.Post, error)
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository constructs repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO posts (event_id, author_id, title, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		post.EventID,
		post.AuthorID,
		post.Title,
		post.Body,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	const query = `
        SELECT p.id, p.event_id, p.author_id, p.title, p.body,
               (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
               p.created_at, p.updated_at
        FROM posts p WHERE p.id=$1`

	var post domain.Post
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.EventID,
		&post.AuthorID,
		&post.Title,
		&post.Body,
		&post.LikeCount,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByEvent(ctx context.Context, eventID int64, limit, offset int) ([]domain.Post, error) {
	const query = `
        SELECT p.id, p.event_id, p.author_id, p.title, p.body,
               (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
               p.created_at, p.updated_at
        FROM posts p WHERE p.event_id=$1
        ORDER BY p.created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, eventID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.EventID,
			&post.AuthorID,
			&post.Title,
			&post.Body,
			&post.LikeCount,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
