package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepo reads only the display projection of the externally owned users
// table. Profile CRUD lives outside this service.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

type UserProjectionRecord struct {
	ID     int64
	Name   string
	Avatar string
}

func (r *UserRepo) GetProjection(ctx context.Context, userID int64) (UserProjectionRecord, error) {
	if userID <= 0 {
		return UserProjectionRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return UserProjectionRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec UserProjectionRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, COALESCE(name, ''), COALESCE(avatar, '')
FROM users
WHERE id = $1
`, userID).Scan(&rec.ID, &rec.Name, &rec.Avatar)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserProjectionRecord{}, ErrUserNotFound
		}
		return UserProjectionRecord{}, fmt.Errorf("get user projection: %w", err)
	}

	return rec, nil
}
