package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchMemberRecord struct {
	MatchID      int64
	TargetUserID int64
	DisplayName  string
	Avatar       string
	CreatedAt    time.Time
}

// CreateActive inserts an active match for the normalized pair. A partial
// unique index on (user_a_id, user_b_id) WHERE status = 'active' makes the
// insert a no-op when an active match already exists; the existing row's id
// is then returned with created=false so a concurrent loser sees a find, not
// a conflict.
func (r *MatchRepo) CreateActive(ctx context.Context, tx pgx.Tx, userID, targetID int64) (int64, bool, error) {
	if userID <= 0 || targetID <= 0 {
		return 0, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return 0, false, fmt.Errorf("transaction is required")
	}

	userA, userB := normalizePair(userID, targetID)

	var matchID int64
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	status,
	created_at
) VALUES ($1, $2, 'active', NOW())
ON CONFLICT (user_a_id, user_b_id) WHERE status = 'active' DO NOTHING
RETURNING id
`, userA, userB).Scan(&matchID)
	if err == nil {
		return matchID, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("create match: %w", err)
	}

	err = tx.QueryRow(ctx, `
SELECT id
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2 AND status = 'active'
`, userA, userB).Scan(&matchID)
	if err != nil {
		return 0, false, fmt.Errorf("find existing active match: %w", err)
	}

	return matchID, false, nil
}

func (r *MatchRepo) ListActiveForUser(ctx context.Context, userID int64, limit int) ([]MatchMemberRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchMemberRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS target_user_id,
	COALESCE(u.name, ''),
	COALESCE(u.avatar, ''),
	m.created_at
FROM matches m
JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.status = 'active'
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchMemberRecord, 0, limit)
	for rows.Next() {
		var item MatchMemberRecord
		if err := rows.Scan(
			&item.MatchID,
			&item.TargetUserID,
			&item.DisplayName,
			&item.Avatar,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan active match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active matches: %w", rows.Err())
	}

	return items, nil
}

// Unmatch transitions the pair's active match to 'unmatched'. The row stays;
// a later mutual swipe can create a fresh active match for the same pair.
func (r *MatchRepo) Unmatch(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid unmatch payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := normalizePair(userID, targetID)

	result, err := tx.Exec(ctx, `
UPDATE matches
SET status = 'unmatched'
WHERE user_a_id = $1 AND user_b_id = $2 AND status = 'active'
`, userA, userB)
	if err != nil {
		return false, fmt.Errorf("unmatch: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func normalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
