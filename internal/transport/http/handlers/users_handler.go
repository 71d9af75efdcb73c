package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/AnkurSaini200/Cupid/internal/services/auth"
	userssvc "github.com/AnkurSaini200/Cupid/internal/services/users"
	httperrors "github.com/AnkurSaini200/Cupid/internal/transport/http/errors"
)

type UsersHandler struct {
	service *userssvc.Service
}

func NewUsersHandler(service *userssvc.Service) *UsersHandler {
	return &UsersHandler{service: service}
}

func (h *UsersHandler) Projection(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	userID, ok := pathInt64(chi.URLParam(r, "userID"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	projection, err := h.service.Projection(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, userssvc.ErrNotFound):
			writeNotFound(w, "USER_NOT_FOUND", "user not found")
		case errors.Is(err, userssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load user")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, projection)
}
