package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
	swipesvc "github.com/AnkurSaini200/Cupid/internal/services/swipes"
	"github.com/AnkurSaini200/Cupid/internal/transport/http/dto"
	httperrors "github.com/AnkurSaini200/Cupid/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 || strings.TrimSpace(req.Direction) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and direction are required")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.TargetID, req.Direction)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrInvalidDirection):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported swipe direction")
		case errors.Is(err, swipesvc.ErrSelfSwipe):
			writeBadRequest(w, "VALIDATION_ERROR", "cannot swipe on yourself")
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:      true,
		SwipeID: result.SwipeID,
		IsMatch: result.IsMatch,
		MatchID: result.MatchID,
	})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func pathInt64(raw string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
