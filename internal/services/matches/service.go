package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgrepo "github.com/AnkurSaini200/Cupid/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

type MatchStore interface {
	ListActiveForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.MatchMemberRecord, error)
	Unmatch(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
}

type PresenceSource interface {
	IsOnline(userID int64) bool
}

type MatchItem struct {
	MatchID      int64
	TargetUserID int64
	Name         string
	Avatar       string
	Online       bool
	MatchedAt    time.Time
}

type Service struct {
	pool       *pgxpool.Pool
	matchStore MatchStore
	presence   PresenceSource
	withTx     func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	MatchStore MatchStore
	Presence   PresenceSource
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		pool:       deps.Pool,
		matchStore: deps.MatchStore,
		presence:   deps.Presence,
	}
	s.withTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

// List returns the user's active matches newest first, each resolved to the
// other member's display projection. Members the join could not resolve are
// simply absent from the rows, never an error.
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	rows, err := s.matchStore.ListActiveForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		online := false
		if s.presence != nil {
			online = s.presence.IsOnline(row.TargetUserID)
		}
		items = append(items, MatchItem{
			MatchID:      row.MatchID,
			TargetUserID: row.TargetUserID,
			Name:         row.DisplayName,
			Avatar:       row.Avatar,
			Online:       online,
			MatchedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

// Unmatch transitions the pair's active match to unmatched. Returns false
// when no active match existed.
func (s *Service) Unmatch(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return false, ErrValidation
	}
	if s.matchStore == nil {
		return false, fmt.Errorf("match store is nil")
	}

	var done bool
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		ok, err := s.matchStore.Unmatch(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		done = ok
		return nil
	}); err != nil {
		return false, err
	}

	return done, nil
}
