package handlers

import (
	"net/http"
	"strings"

	"felix/internal/middleware"
	"felix/internal/websocket"
)

// WSActivity upgrades to a websocket that streams wallet activity
// events. Browsers cannot set headers on websocket requests, so the
// token also rides in the query string.
func (h *Handler) WSActivity(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	principal, err := middleware.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	user, err := h.users.GetByKeycloakID(r.Context(), principal.KeycloakID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "user not registered")
		return
	}
	websocket.ServeWS(w, r, h.hub, user.ID)
}
