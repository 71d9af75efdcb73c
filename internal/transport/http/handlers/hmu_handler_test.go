package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AnkurSaini200/Cupid/internal/realtime"
	pgrepo "github.com/AnkurSaini200/Cupid/internal/repo/postgres"
	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
	hmusvc "github.com/AnkurSaini200/Cupid/internal/services/hmu"
)

type memoryPostStore struct {
	nextPostID     int64
	nextResponseID int64
	posts          map[int64]pgrepo.HMUPostRecord
	responses      map[int64][]pgrepo.HMUResponseRecord
}

func newMemoryPostStore() *memoryPostStore {
	return &memoryPostStore{
		posts:     make(map[int64]pgrepo.HMUPostRecord),
		responses: make(map[int64][]pgrepo.HMUResponseRecord),
	}
}

func (s *memoryPostStore) CreatePost(_ context.Context, authorID int64, activity, text, location string, now time.Time) (pgrepo.HMUPostRecord, error) {
	s.nextPostID++
	rec := pgrepo.HMUPostRecord{ID: s.nextPostID, AuthorID: authorID, Activity: activity, Text: text, Location: location, CreatedAt: now}
	s.posts[rec.ID] = rec
	return rec, nil
}

func (s *memoryPostStore) GetPost(_ context.Context, postID int64) (pgrepo.HMUPostRecord, error) {
	rec, ok := s.posts[postID]
	if !ok {
		return pgrepo.HMUPostRecord{}, pgrepo.ErrPostNotFound
	}
	return rec, nil
}

func (s *memoryPostStore) ListFeed(_ context.Context, limit int) ([]pgrepo.HMUPostRecord, error) {
	out := make([]pgrepo.HMUPostRecord, 0, len(s.posts))
	for _, rec := range s.posts {
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memoryPostStore) ListByAuthor(_ context.Context, authorID int64, _ int) ([]pgrepo.HMUPostRecord, error) {
	var out []pgrepo.HMUPostRecord
	for _, rec := range s.posts {
		if rec.AuthorID == authorID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memoryPostStore) AppendResponse(_ context.Context, postID, responderID int64, message string, now time.Time) (pgrepo.HMUResponseRecord, error) {
	s.nextResponseID++
	rec := pgrepo.HMUResponseRecord{ID: s.nextResponseID, PostID: postID, ResponderID: responderID, Message: message, CreatedAt: now}
	s.responses[postID] = append(s.responses[postID], rec)
	return rec, nil
}

func (s *memoryPostStore) ListResponses(_ context.Context, postID int64) ([]pgrepo.HMUResponseRecord, error) {
	return s.responses[postID], nil
}

func (s *memoryPostStore) DeletePost(_ context.Context, postID int64) (bool, error) {
	if _, ok := s.posts[postID]; !ok {
		return false, nil
	}
	delete(s.posts, postID)
	return true, nil
}

type noopBroadcaster struct{}

func (noopBroadcaster) PushToRoom(realtime.Room, string, any) int { return 0 }

func newHMURouter(store *memoryPostStore) chi.Router {
	h := NewHMUHandler(hmusvc.NewService(store, noopBroadcaster{}, 20))
	r := chi.NewRouter()
	r.Post("/hmu", h.Create)
	r.Get("/hmu", h.Feed)
	r.Post("/hmu/{postID}/responses", h.Respond)
	r.Get("/hmu/{postID}/responses", h.ListResponses)
	r.Delete("/hmu/{postID}", h.Delete)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID > 0 {
		req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: userID}))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHMUHandlerCreateAndRespondFlow(t *testing.T) {
	store := newMemoryPostStore()
	router := newHMURouter(store)

	resp := doJSON(t, router, http.MethodPost, "/hmu", 1, map[string]any{
		"activity": "bouldering",
		"text":     "gym session tonight",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("create post: got %d body %s", resp.Code, resp.Body.String())
	}

	var post struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode post: %v", err)
	}

	resp = doJSON(t, router, http.MethodPost, "/hmu/1/responses", 2, map[string]any{"message": "in!"})
	if resp.Code != http.StatusOK {
		t.Fatalf("respond: got %d body %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodGet, "/hmu/1/responses", 1, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list responses: got %d", resp.Code)
	}
	var listing struct {
		Items []struct {
			Message string `json:"message"`
		} `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode responses: %v", err)
	}
	if len(listing.Items) != 1 || listing.Items[0].Message != "in!" {
		t.Fatalf("unexpected responses %+v", listing.Items)
	}
}

func TestHMUHandlerDeleteForbiddenForNonAuthor(t *testing.T) {
	store := newMemoryPostStore()
	router := newHMURouter(store)

	doJSON(t, router, http.MethodPost, "/hmu", 1, map[string]any{
		"activity": "coffee",
		"text":     "morning run for coffee",
	})

	resp := doJSON(t, router, http.MethodDelete, "/hmu/1", 2, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("non-author delete: got %d want %d", resp.Code, http.StatusForbidden)
	}

	resp = doJSON(t, router, http.MethodDelete, "/hmu/1", 1, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("author delete: got %d body %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodDelete, "/hmu/1", 1, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: got %d want %d", resp.Code, http.StatusNotFound)
	}
}

func TestHMUHandlerRespondToMissingPost(t *testing.T) {
	router := newHMURouter(newMemoryPostStore())

	resp := doJSON(t, router, http.MethodPost, "/hmu/55/responses", 2, map[string]any{"message": "hi"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("missing post: got %d want %d", resp.Code, http.StatusNotFound)
	}
}

func TestHMUHandlerRequiresAuth(t *testing.T) {
	router := newHMURouter(newMemoryPostStore())

	resp := doJSON(t, router, http.MethodGet, "/hmu", 0, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated feed: got %d want %d", resp.Code, http.StatusUnauthorized)
	}
}
