package common

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"league-app-go/internal/domain/shared"
	"league-app-go/internal/transport/httpserver/middleware"
)

type setRoleRequest struct {
	Role string `json:"role"`
}

type profileResponse struct {
	UserID    string  `json:"user_id"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
	Role      string  `json:"role"`
}

// SetUserRole grants or revokes the global administrator role. Only global
// administrators may call it.
func (h *Handlers) SetUserRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w)
		return
	}
	if !caller.Actor().IsGlobalAdmin() {
		h.log.BusinessError("users.set_role: caller is not a global admin", shared.ErrForbidden, "user_id", caller.ID)
		writeError(w, http.StatusForbidden, "forbidden", "global administrator role required")
		return
	}

	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidJSON(w)
		return
	}

	userID := chi.URLParam(r, "id")
	profile, err := h.Users.SetRole(r.Context(), userID, shared.GlobalRole(req.Role))
	if err != nil {
		WriteServiceError(w, h.log, "users.set_role", err, "user_id", userID)
		return
	}

	h.log.Info("users.set_role: role changed", "user_id", userID, "role", profile.Role, "actor_id", caller.ID)
	writeJSON(w, http.StatusOK, profileResponse{
		UserID:    profile.UserID,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
		Role:      string(profile.Role),
	})
}
