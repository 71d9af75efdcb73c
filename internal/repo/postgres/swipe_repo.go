package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID           int64
	ActorUserID  int64
	TargetUserID int64
	Direction    string
	CreatedAt    time.Time
}

// Create appends one ledger row. There is deliberately no uniqueness
// constraint: repeated decisions for the same target each get their own row.
func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction string, now time.Time) (SwipeRecord, error) {
	if actorUserID <= 0 || targetUserID <= 0 || direction == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	direction,
	created_at
) VALUES ($1, $2, $3, $4)
RETURNING id, actor_user_id, target_user_id, direction, created_at
`, actorUserID, targetUserID, direction, now.UTC()).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Direction,
		&rec.CreatedAt,
	)
	if err != nil {
		return SwipeRecord{}, fmt.Errorf("create swipe: %w", err)
	}

	return rec, nil
}

// HasReciprocalInterest reports whether the target has ever swiped right or
// super on the actor.
func (r *SwipeRepo) HasReciprocalInterest(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid reciprocal lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE actor_user_id = $1
	AND target_user_id = $2
	AND direction IN ('right', 'super')
LIMIT 1
`, targetUserID, actorUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal swipe: %w", err)
	}

	return true, nil
}
