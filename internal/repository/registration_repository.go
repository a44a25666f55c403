package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// RegistrationRepository manages event registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration, capacity int) error
	Delete(ctx context.Context, eventID, userID int64) (bool, error)
	Exists(ctx context.Context, eventID, userID int64) (bool, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Registration, error)
	ListByEvent(ctx context.Context, eventID int64, limit, offset int) ([]domain.Registration, error)
}

type registrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository constructs repository.
func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &registrationRepository{pool: pool}
}

// Create inserts a registration while holding the event row lock, so
// two volunteers racing for the last slot serialize on the count check.
// capacity <= 0 means unlimited. Returns ErrEventFull at capacity.
func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration, capacity int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT id FROM events WHERE id=$1 FOR UPDATE`, reg.EventID); err != nil {
		return err
	}

	if capacity > 0 {
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id=$1`, reg.EventID).Scan(&count); err != nil {
			return err
		}
		if count >= capacity {
			return ErrEventFull
		}
	}

	const query = `
        INSERT INTO registrations (event_id, user_id)
        VALUES ($1, $2)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, query, reg.EventID, reg.UserID).
		Scan(&reg.ID, &reg.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *registrationRepository) Delete(ctx context.Context, eventID, userID int64) (bool, error) {
	const query = `DELETE FROM registrations WHERE event_id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, eventID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *registrationRepository) Exists(ctx context.Context, eventID, userID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM registrations WHERE event_id=$1 AND user_id=$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *registrationRepository) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE event_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Registration, error) {
	const query = `
        SELECT id, event_id, user_id, created_at
        FROM registrations WHERE user_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]domain.Registration, 0)
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID int64, limit, offset int) ([]domain.Registration, error) {
	const query = `
        SELECT id, event_id, user_id, created_at
        FROM registrations WHERE event_id=$1
        ORDER BY created_at ASC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, eventID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]domain.Registration, 0)
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
