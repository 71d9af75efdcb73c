// Package swipes is the swipe ledger and match engine: it appends swipe
// decisions and materializes a match when mutual positive interest is
// detected.
package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnkurSaini200/Cupid/internal/domain/enums"
	"github.com/AnkurSaini200/Cupid/internal/realtime"
	pgrepo "github.com/AnkurSaini200/Cupid/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidDirection = errors.New("invalid swipe direction")
	ErrSelfSwipe        = errors.New("cannot swipe on yourself")
)

type SwipeStore interface {
	Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction string, now time.Time) (pgrepo.SwipeRecord, error)
	HasReciprocalInterest(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error)
}

type MatchStore interface {
	CreateActive(ctx context.Context, tx pgx.Tx, userID, targetID int64) (int64, bool, error)
}

type Broadcaster interface {
	PushToUser(userID int64, event string, payload any) int
}

type SwipeResult struct {
	SwipeID int64
	IsMatch bool
	MatchID int64
}

type Service struct {
	pool        *pgxpool.Pool
	swipeStore  SwipeStore
	matchStore  MatchStore
	broadcaster Broadcaster
	withTx      func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now         func() time.Time
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	SwipeStore  SwipeStore
	MatchStore  MatchStore
	Broadcaster Broadcaster
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		pool:        deps.Pool,
		swipeStore:  deps.SwipeStore,
		matchStore:  deps.MatchStore,
		broadcaster: deps.Broadcaster,
		now:         time.Now,
	}
	s.withTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

type matchPayload struct {
	MatchID     int64 `json:"match_id"`
	OtherUserID int64 `json:"other_user_id"`
}

// Swipe appends the decision to the ledger and, for right/super, checks for
// reciprocal interest and creates the match. The ledger write and the match
// creation commit in one transaction: a failure on either leaves no partial
// state and the caller never sees a false match.
func (s *Service) Swipe(ctx context.Context, actorID, targetID int64, direction string) (SwipeResult, error) {
	if actorID <= 0 || targetID <= 0 {
		return SwipeResult{}, ErrValidation
	}
	if actorID == targetID {
		return SwipeResult{}, ErrSelfSwipe
	}

	parsed, ok := enums.ParseSwipeDirection(direction)
	if !ok {
		return SwipeResult{}, ErrInvalidDirection
	}

	if s.swipeStore == nil || s.matchStore == nil {
		return SwipeResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	now := s.now().UTC()

	var result SwipeResult
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		swipe, err := s.swipeStore.Create(txCtx, tx, actorID, targetID, string(parsed), now)
		if err != nil {
			return err
		}
		result.SwipeID = swipe.ID

		// Left swipes never match regardless of any prior history.
		if !parsed.Positive() {
			return nil
		}

		mutual, err := s.swipeStore.HasReciprocalInterest(txCtx, tx, actorID, targetID)
		if err != nil {
			return err
		}
		if !mutual {
			return nil
		}

		matchID, _, err := s.matchStore.CreateActive(txCtx, tx, actorID, targetID)
		if err != nil {
			return err
		}
		result.IsMatch = true
		result.MatchID = matchID
		return nil
	}); err != nil {
		return SwipeResult{}, err
	}

	if result.IsMatch && s.broadcaster != nil {
		s.broadcaster.PushToUser(actorID, realtime.EventNewMatch, matchPayload{MatchID: result.MatchID, OtherUserID: targetID})
		s.broadcaster.PushToUser(targetID, realtime.EventNewMatch, matchPayload{MatchID: result.MatchID, OtherUserID: actorID})
	}

	return result, nil
}
