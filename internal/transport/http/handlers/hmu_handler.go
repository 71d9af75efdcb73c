package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
	hmusvc "github.com/AnkurSaini200/Cupid/internal/services/hmu"
	"github.com/AnkurSaini200/Cupid/internal/transport/http/dto"
	httperrors "github.com/AnkurSaini200/Cupid/internal/transport/http/errors"
)

type HMUHandler struct {
	service *hmusvc.Service
}

func NewHMUHandler(service *hmusvc.Service) *HMUHandler {
	return &HMUHandler{service: service}
}

func (h *HMUHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "HMU_SERVICE_UNAVAILABLE", "activity board is unavailable")
		return
	}

	var req dto.CreateHMUPostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	post, err := h.service.CreatePost(r.Context(), identity.UserID, req.Activity, req.Text, req.Location)
	if err != nil {
		if errors.Is(err, hmusvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "activity and text are required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to create post")
		return
	}

	httperrors.Write(w, http.StatusOK, toHMUPostItem(post))
}

func (h *HMUHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "HMU_SERVICE_UNAVAILABLE", "activity board is unavailable")
		return
	}

	posts, err := h.service.Feed(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load feed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.HMUFeedResponse{Items: toHMUPostItems(posts)})
}

func (h *HMUHandler) Mine(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "HMU_SERVICE_UNAVAILABLE", "activity board is unavailable")
		return
	}

	posts, err := h.service.ListByAuthor(r.Context(), identity.UserID, queryInt(r, "limit", 0))
	if err != nil {
		if errors.Is(err, hmusvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load posts")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.HMUFeedResponse{Items: toHMUPostItems(posts)})
}

func (h *HMUHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "HMU_SERVICE_UNAVAILABLE", "activity board is unavailable")
		return
	}

	postID, ok := pathInt64(chi.URLParam(r, "postID"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid post id")
		return
	}

	var req dto.RespondHMURequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	response, err := h.service.Respond(r.Context(), postID, identity.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, hmusvc.ErrNotFound):
			writeNotFound(w, "POST_NOT_FOUND", "post not found")
		case errors.Is(err, hmusvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid response request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to respond")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.HMUResponseItem{
		ID:          response.ID,
		PostID:      response.PostID,
		ResponderID: response.ResponderID,
		Message:     response.Message,
		CreatedAt:   response.CreatedAt,
	})
}

func (h *HMUHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "HMU_SERVICE_UNAVAILABLE", "activity board is unavailable")
		return
	}

	postID, ok := pathInt64(chi.URLParam(r, "postID"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid post id")
		return
	}

	responses, err := h.service.ListResponses(r.Context(), postID)
	if err != nil {
		if errors.Is(err, hmusvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load responses")
		return
	}

	out := make([]dto.HMUResponseItem, 0, len(responses))
	for _, response := range responses {
		out = append(out, dto.HMUResponseItem{
			ID:          response.ID,
			PostID:      response.PostID,
			ResponderID: response.ResponderID,
			Message:     response.Message,
			CreatedAt:   response.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.HMUResponseListResponse{Items: out})
}

func (h *HMUHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "HMU_SERVICE_UNAVAILABLE", "activity board is unavailable")
		return
	}

	postID, ok := pathInt64(chi.URLParam(r, "postID"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid post id")
		return
	}

	if err := h.service.Delete(r.Context(), postID, identity.UserID); err != nil {
		switch {
		case errors.Is(err, hmusvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "only the author may delete a post")
		case errors.Is(err, hmusvc.ErrNotFound):
			writeNotFound(w, "POST_NOT_FOUND", "post not found")
		case errors.Is(err, hmusvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid delete request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to delete post")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func toHMUPostItem(post hmusvc.Post) dto.HMUPostItem {
	return dto.HMUPostItem{
		ID:            post.ID,
		AuthorID:      post.AuthorID,
		AuthorName:    post.AuthorName,
		AuthorAvatar:  post.AuthorAvatar,
		Activity:      post.Activity,
		Text:          post.Text,
		Location:      post.Location,
		ResponseCount: post.ResponseCount,
		CreatedAt:     post.CreatedAt,
	}
}

func toHMUPostItems(posts []hmusvc.Post) []dto.HMUPostItem {
	out := make([]dto.HMUPostItem, 0, len(posts))
	for _, post := range posts {
		out = append(out, toHMUPostItem(post))
	}
	return out
}
