// Package users resolves lightweight user projections for the matching
// surfaces. Profile management itself lives in another system; this
// service only reads what Cupid needs to render a counterpart.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnkurSaini200/Cupid/internal/domain/model"
	pgrepo "github.com/AnkurSaini200/Cupid/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
)

type ProjectionStore interface {
	GetProjection(ctx context.Context, userID int64) (pgrepo.UserProjectionRecord, error)
}

type PresenceSource interface {
	IsOnline(userID int64) bool
}

type Service struct {
	store    ProjectionStore
	presence PresenceSource
}

func NewService(store ProjectionStore, presence PresenceSource) *Service {
	return &Service{store: store, presence: presence}
}

// Projection returns the display projection for a user, decorated with
// live presence.
func (s *Service) Projection(ctx context.Context, userID int64) (model.UserProjection, error) {
	if userID <= 0 {
		return model.UserProjection{}, ErrValidation
	}
	if s.store == nil {
		return model.UserProjection{}, fmt.Errorf("projection store is nil")
	}

	rec, err := s.store.GetProjection(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.UserProjection{}, ErrNotFound
		}
		return model.UserProjection{}, err
	}

	projection := model.UserProjection{ID: rec.ID, Name: rec.Name, Avatar: rec.Avatar}
	if s.presence != nil {
		projection.Online = s.presence.IsOnline(userID)
	}
	return projection, nil
}
