package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
	chatsvc "github.com/AnkurSaini200/Cupid/internal/services/chat"
	"github.com/AnkurSaini200/Cupid/internal/transport/http/dto"
	httperrors "github.com/AnkurSaini200/Cupid/internal/transport/http/errors"
)

type CommunitiesHandler struct {
	service *chatsvc.Service
}

func NewCommunitiesHandler(service *chatsvc.Service) *CommunitiesHandler {
	return &CommunitiesHandler{service: service}
}

func (h *CommunitiesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	communityID, ok := pathInt64(chi.URLParam(r, "communityID"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid community id")
		return
	}

	var req dto.SendCommunityMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	message, err := h.service.SendCommunityMessage(r.Context(), communityID, identity.UserID, req.Text)
	if err != nil {
		var rateErr chatsvc.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "RATE_LIMITED",
				Message:       "too many messages, slow down",
				RetryAfterSec: rateErr.RetryAfterSec,
			})
		case errors.Is(err, chatsvc.ErrEmptyText):
			writeBadRequest(w, "VALIDATION_ERROR", "message text is empty")
		case errors.Is(err, chatsvc.ErrTextTooLong):
			writeBadRequest(w, "VALIDATION_ERROR", "message text is too long")
		case errors.Is(err, chatsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to send community message")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CommunityMessageItem{
		ID:          message.ID,
		CommunityID: message.CommunityID,
		SenderID:    message.SenderID,
		Text:        message.Text,
		CreatedAt:   message.CreatedAt,
	})
}

func (h *CommunitiesHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	communityID, ok := pathInt64(chi.URLParam(r, "communityID"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid community id")
		return
	}

	items, err := h.service.ListCommunityMessages(r.Context(), communityID, queryInt(r, "limit", 100))
	if err != nil {
		if errors.Is(err, chatsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid community messages request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load community messages")
		return
	}

	out := make([]dto.CommunityMessageItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.CommunityMessageItem{
			ID:          item.ID,
			CommunityID: item.CommunityID,
			SenderID:    item.SenderID,
			Text:        item.Text,
			CreatedAt:   item.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.CommunityMessageListResponse{Items: out})
}
