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

type MessagesHandler struct {
	service *chatsvc.Service
}

func NewMessagesHandler(service *chatsvc.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	message, err := h.service.SendMessage(r.Context(), identity.UserID, req.RecipientID, req.Text, req.ConversationID)
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
			writeInternal(w, "INTERNAL_ERROR", "failed to send message")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, toMessageItem(message))
}

func (h *MessagesHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	items, err := h.service.ListConversations(r.Context(), identity.UserID, queryInt(r, "limit", 50))
	if err != nil {
		if errors.Is(err, chatsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid conversations request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load conversations")
		return
	}

	out := make([]dto.ConversationItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ConversationItem{
			ID:              item.ID,
			OtherUserID:     item.OtherUserID,
			OtherName:       item.OtherName,
			OtherAvatar:     item.OtherAvatar,
			OtherOnline:     item.OtherOnline,
			LastMessageText: item.LastMessageText,
			LastSenderID:    item.LastSenderID,
			LastMessageAt:   item.LastMessageAt,
			UnreadCount:     item.UnreadCount,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ConversationListResponse{Items: out})
}

func (h *MessagesHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	conversationID, ok := pathInt64(chi.URLParam(r, "conversationID"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation id")
		return
	}

	items, err := h.service.ListMessages(r.Context(), identity.UserID, conversationID, queryInt(r, "limit", 100))
	if err != nil {
		switch {
		case errors.Is(err, chatsvc.ErrNotFound):
			writeNotFound(w, "CONVERSATION_NOT_FOUND", "conversation not found")
		case errors.Is(err, chatsvc.ErrNotMember):
			writeForbidden(w, "FORBIDDEN", "not a conversation participant")
		case errors.Is(err, chatsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid messages request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load messages")
		}
		return
	}

	out := make([]dto.MessageItem, 0, len(items))
	for _, item := range items {
		out = append(out, toMessageItem(item))
	}

	httperrors.Write(w, http.StatusOK, dto.MessageListResponse{Items: out})
}

func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	var req dto.MarkReadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.MarkRead(r.Context(), identity.UserID, req.MessageIDs); err != nil {
		if errors.Is(err, chatsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid mark read request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to mark messages read")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{OK: true})
}

func toMessageItem(m chatsvc.Message) dto.MessageItem {
	return dto.MessageItem{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Text:           m.Text,
		Read:           m.Read,
		Delivered:      m.Delivered,
		CreatedAt:      m.CreatedAt,
		ReadAt:         m.ReadAt,
	}
}
