package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
	matchessvc "github.com/AnkurSaini200/Cupid/internal/services/matches"
	"github.com/AnkurSaini200/Cupid/internal/transport/http/dto"
	httperrors "github.com/AnkurSaini200/Cupid/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID, queryInt(r, "limit", 50))
	if err != nil {
		if errors.Is(err, matchessvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		return
	}

	out := make([]dto.MatchItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.MatchItem{
			MatchID:      item.MatchID,
			TargetUserID: item.TargetUserID,
			Name:         item.Name,
			Avatar:       item.Avatar,
			Online:       item.Online,
			MatchedAt:    item.MatchedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchListResponse{Items: out})
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	var req dto.UnmatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	removed, err := h.service.Unmatch(r.Context(), identity.UserID, req.TargetID)
	if err != nil {
		if errors.Is(err, matchessvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unmatch request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to unmatch")
		return
	}
	if !removed {
		writeNotFound(w, "MATCH_NOT_FOUND", "no active match with this user")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{OK: true})
}
