package hmu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnkurSaini200/Cupid/internal/realtime"
	pgrepo "github.com/AnkurSaini200/Cupid/internal/repo/postgres"
)

type stubPostStore struct {
	nextPostID     int64
	nextResponseID int64
	posts          map[int64]pgrepo.HMUPostRecord
	responses      map[int64][]pgrepo.HMUResponseRecord
}

func newStubPostStore() *stubPostStore {
	return &stubPostStore{
		posts:     make(map[int64]pgrepo.HMUPostRecord),
		responses: make(map[int64][]pgrepo.HMUResponseRecord),
	}
}

func (s *stubPostStore) CreatePost(_ context.Context, authorID int64, activity, text, location string, now time.Time) (pgrepo.HMUPostRecord, error) {
	s.nextPostID++
	rec := pgrepo.HMUPostRecord{
		ID:        s.nextPostID,
		AuthorID:  authorID,
		Activity:  activity,
		Text:      text,
		Location:  location,
		CreatedAt: now,
	}
	s.posts[rec.ID] = rec
	return rec, nil
}

func (s *stubPostStore) GetPost(_ context.Context, postID int64) (pgrepo.HMUPostRecord, error) {
	rec, ok := s.posts[postID]
	if !ok {
		return pgrepo.HMUPostRecord{}, pgrepo.ErrPostNotFound
	}
	rec.ResponseCount = len(s.responses[postID])
	return rec, nil
}

func (s *stubPostStore) ListFeed(_ context.Context, limit int) ([]pgrepo.HMUPostRecord, error) {
	out := make([]pgrepo.HMUPostRecord, 0, len(s.posts))
	for _, rec := range s.posts {
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubPostStore) ListByAuthor(_ context.Context, authorID int64, _ int) ([]pgrepo.HMUPostRecord, error) {
	var out []pgrepo.HMUPostRecord
	for _, rec := range s.posts {
		if rec.AuthorID == authorID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubPostStore) AppendResponse(_ context.Context, postID, responderID int64, message string, now time.Time) (pgrepo.HMUResponseRecord, error) {
	s.nextResponseID++
	rec := pgrepo.HMUResponseRecord{
		ID:          s.nextResponseID,
		PostID:      postID,
		ResponderID: responderID,
		Message:     message,
		CreatedAt:   now,
	}
	s.responses[postID] = append(s.responses[postID], rec)
	return rec, nil
}

func (s *stubPostStore) ListResponses(_ context.Context, postID int64) ([]pgrepo.HMUResponseRecord, error) {
	return s.responses[postID], nil
}

func (s *stubPostStore) DeletePost(_ context.Context, postID int64) (bool, error) {
	if _, ok := s.posts[postID]; !ok {
		return false, nil
	}
	delete(s.posts, postID)
	delete(s.responses, postID)
	return true, nil
}

type stubRoomBroadcaster struct {
	rooms  []realtime.Room
	events []string
}

func (s *stubRoomBroadcaster) PushToRoom(room realtime.Room, event string, _ any) int {
	s.rooms = append(s.rooms, room)
	s.events = append(s.events, event)
	return 1
}

func TestRespondBroadcastsToPostRoom(t *testing.T) {
	store := newStubPostStore()
	broadcaster := &stubRoomBroadcaster{}
	svc := NewService(store, broadcaster, 20)

	post, err := svc.CreatePost(context.Background(), 1, "bouldering", "anyone up for the gym tonight?", "")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	response, err := svc.Respond(context.Background(), post.ID, 2, "count me in")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if response.Message != "count me in" {
		t.Fatalf("unexpected message %q", response.Message)
	}
	if len(broadcaster.rooms) != 1 {
		t.Fatalf("expected one room push, got %d", len(broadcaster.rooms))
	}
	if broadcaster.rooms[0] != realtime.ActivityRoom(post.ID) {
		t.Fatalf("pushed to wrong room %v", broadcaster.rooms[0])
	}
	if broadcaster.events[0] != realtime.EventHMUNewResponse {
		t.Fatalf("unexpected event %q", broadcaster.events[0])
	}
}

func TestRespondDefaultsEmptyMessage(t *testing.T) {
	store := newStubPostStore()
	svc := NewService(store, &stubRoomBroadcaster{}, 20)

	post, err := svc.CreatePost(context.Background(), 1, "coffee", "morning coffee run", "downtown")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	response, err := svc.Respond(context.Background(), post.ID, 3, "   ")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if response.Message != defaultResponse {
		t.Fatalf("expected default message, got %q", response.Message)
	}
}

func TestRespondToMissingPostFails(t *testing.T) {
	svc := NewService(newStubPostStore(), &stubRoomBroadcaster{}, 20)

	if _, err := svc.Respond(context.Background(), 99, 2, "hi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsRestrictedToAuthor(t *testing.T) {
	store := newStubPostStore()
	svc := NewService(store, &stubRoomBroadcaster{}, 20)

	post, err := svc.CreatePost(context.Background(), 1, "hike", "weekend trail hike", "")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := svc.Delete(context.Background(), post.ID, 2); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-author, got %v", err)
	}
	if _, err := store.GetPost(context.Background(), post.ID); err != nil {
		t.Fatalf("post must survive a forbidden delete: %v", err)
	}

	if err := svc.Delete(context.Background(), post.ID, 1); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}
	if _, err := store.GetPost(context.Background(), post.ID); !errors.Is(err, pgrepo.ErrPostNotFound) {
		t.Fatalf("post should be gone after author delete")
	}

	if err := svc.Delete(context.Background(), post.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting twice should report not found, got %v", err)
	}
}

func TestCreatePostValidatesInput(t *testing.T) {
	svc := NewService(newStubPostStore(), &stubRoomBroadcaster{}, 20)

	if _, err := svc.CreatePost(context.Background(), 1, "  ", "text", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank activity, got %v", err)
	}
	if _, err := svc.CreatePost(context.Background(), 1, "run", "  ", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank text, got %v", err)
	}
	if _, err := svc.CreatePost(context.Background(), 0, "run", "text", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing author, got %v", err)
	}
}
