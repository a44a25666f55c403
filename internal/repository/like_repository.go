package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository manages post likes.
type LikeRepository interface {
	Like(ctx context.Context, postID, userID int64) (bool, error)
	Unlike(ctx context.Context, postID, userID int64) (bool, error)
	Count(ctx context.Context, postID int64) (int, error)
}

type likeRepository struct {
	pool *pgxpool.Pool
}

// NewLikeRepository constructs repository.
func NewLikeRepository(pool *pgxpool.Pool) LikeRepository {
	return &likeRepository{pool: pool}
}

// Like inserts the (post, user) pair. The unique constraint makes the
// call idempotent; the bool reports whether a new like landed.
func (r *likeRepository) Like(ctx context.Context, postID, userID int64) (bool, error) {
	const query = `
        INSERT INTO likes (post_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (post_id, user_id) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, postID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *likeRepository) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	const query = `DELETE FROM likes WHERE post_id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, postID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, postID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM likes WHERE post_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, postID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
