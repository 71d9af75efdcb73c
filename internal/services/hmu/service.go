// Package hmu is the activity board: short-lived "hit me up" posts with
// threaded interest responses.
package hmu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AnkurSaini200/Cupid/internal/realtime"
	pgrepo "github.com/AnkurSaini200/Cupid/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("post not found")
	ErrForbidden  = errors.New("only the author may delete a post")
)

const defaultResponse = "I'm interested!"

type PostStore interface {
	CreatePost(ctx context.Context, authorID int64, activity, text, location string, now time.Time) (pgrepo.HMUPostRecord, error)
	GetPost(ctx context.Context, postID int64) (pgrepo.HMUPostRecord, error)
	ListFeed(ctx context.Context, limit int) ([]pgrepo.HMUPostRecord, error)
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]pgrepo.HMUPostRecord, error)
	AppendResponse(ctx context.Context, postID, responderID int64, message string, now time.Time) (pgrepo.HMUResponseRecord, error)
	ListResponses(ctx context.Context, postID int64) ([]pgrepo.HMUResponseRecord, error)
	DeletePost(ctx context.Context, postID int64) (bool, error)
}

type Broadcaster interface {
	PushToRoom(room realtime.Room, event string, payload any) int
}

type Post struct {
	ID            int64     `json:"id"`
	AuthorID      int64     `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	AuthorAvatar  string    `json:"author_avatar,omitempty"`
	Activity      string    `json:"activity"`
	Text          string    `json:"text"`
	Location      string    `json:"location,omitempty"`
	ResponseCount int       `json:"response_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type Response struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	ResponderID int64     `json:"responder_id"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

type Service struct {
	store       PostStore
	broadcaster Broadcaster
	feedLimit   int
	now         func() time.Time
}

func NewService(store PostStore, broadcaster Broadcaster, feedLimit int) *Service {
	if feedLimit <= 0 {
		feedLimit = 20
	}

	return &Service{
		store:       store,
		broadcaster: broadcaster,
		feedLimit:   feedLimit,
		now:         time.Now,
	}
}

func (s *Service) CreatePost(ctx context.Context, authorID int64, activity, text, location string) (Post, error) {
	if authorID <= 0 {
		return Post{}, ErrValidation
	}

	activity = strings.TrimSpace(activity)
	text = strings.TrimSpace(text)
	if activity == "" || text == "" {
		return Post{}, ErrValidation
	}
	if s.store == nil {
		return Post{}, fmt.Errorf("post store is nil")
	}

	rec, err := s.store.CreatePost(ctx, authorID, activity, text, strings.TrimSpace(location), s.now().UTC())
	if err != nil {
		return Post{}, err
	}

	return toPost(rec), nil
}

func (s *Service) Feed(ctx context.Context, limit int) ([]Post, error) {
	if s.store == nil {
		return nil, fmt.Errorf("post store is nil")
	}
	if limit <= 0 || limit > s.feedLimit {
		limit = s.feedLimit
	}

	rows, err := s.store.ListFeed(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]Post, 0, len(rows))
	for _, row := range rows {
		items = append(items, toPost(row))
	}
	return items, nil
}

func (s *Service) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]Post, error) {
	if authorID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("post store is nil")
	}

	rows, err := s.store.ListByAuthor(ctx, authorID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]Post, 0, len(rows))
	for _, row := range rows {
		items = append(items, toPost(row))
	}
	return items, nil
}

// Respond appends an interest response and broadcasts it to everyone
// watching the post's room. An empty message falls back to the stock
// interest line.
func (s *Service) Respond(ctx context.Context, postID, responderID int64, message string) (Response, error) {
	if postID <= 0 || responderID <= 0 {
		return Response{}, ErrValidation
	}
	if s.store == nil {
		return Response{}, fmt.Errorf("post store is nil")
	}

	if _, err := s.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return Response{}, ErrNotFound
		}
		return Response{}, err
	}

	message = strings.TrimSpace(message)
	if message == "" {
		message = defaultResponse
	}

	rec, err := s.store.AppendResponse(ctx, postID, responderID, message, s.now().UTC())
	if err != nil {
		return Response{}, err
	}

	response := Response{
		ID:          rec.ID,
		PostID:      rec.PostID,
		ResponderID: rec.ResponderID,
		Message:     rec.Message,
		CreatedAt:   rec.CreatedAt,
	}

	if s.broadcaster != nil {
		s.broadcaster.PushToRoom(realtime.ActivityRoom(postID), realtime.EventHMUNewResponse, response)
	}

	return response, nil
}

func (s *Service) ListResponses(ctx context.Context, postID int64) ([]Response, error) {
	if postID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("post store is nil")
	}

	rows, err := s.store.ListResponses(ctx, postID)
	if err != nil {
		return nil, err
	}

	items := make([]Response, 0, len(rows))
	for _, row := range rows {
		items = append(items, Response{
			ID:          row.ID,
			PostID:      row.PostID,
			ResponderID: row.ResponderID,
			Message:     row.Message,
			CreatedAt:   row.CreatedAt,
		})
	}
	return items, nil
}

// Delete removes a post. Only the author may delete; anyone else gets
// ErrForbidden regardless of what they know about the post id.
func (s *Service) Delete(ctx context.Context, postID, requesterID int64) error {
	if postID <= 0 || requesterID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("post store is nil")
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return ErrNotFound
		}
		return err
	}
	if post.AuthorID != requesterID {
		return ErrForbidden
	}

	deleted, err := s.store.DeletePost(ctx, postID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func toPost(rec pgrepo.HMUPostRecord) Post {
	return Post{
		ID:            rec.ID,
		AuthorID:      rec.AuthorID,
		AuthorName:    rec.AuthorName,
		AuthorAvatar:  rec.AuthorAvatar,
		Activity:      rec.Activity,
		Text:          rec.Text,
		Location:      rec.Location,
		ResponseCount: rec.ResponseCount,
		CreatedAt:     rec.CreatedAt,
	}
}
