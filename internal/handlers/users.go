package handlers

import (
	"database/sql"
	"net/http"

	"felix/internal/db"
	"felix/internal/middleware"
	"felix/internal/models"
	"felix/internal/services"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SyncUser upserts the local user row from the identity token. The
// frontend calls this once after login; repeating it is harmless.
func (h *Handler) SyncUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByKeycloakID(r.Context(), principal.KeycloakID)
	if err == nil {
		respondJSON(w, http.StatusOK, userPayload(user))
		return
	}
	if err != sql.ErrNoRows {
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	id := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.Create(r.Context(), tx, id, principal.KeycloakID, principal.Username, principal.Email, principal.DisplayName)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			// Concurrent sync from another tab won the race.
			user, err = h.users.GetByKeycloakID(r.Context(), principal.KeycloakID)
			if err == nil {
				respondJSON(w, http.StatusOK, userPayload(user))
				return
			}
		}
		respondError(w, http.StatusInternalServerError, "unable to create user")
		return
	}
	user, err = h.users.GetByKeycloakID(r.Context(), principal.KeycloakID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusCreated, userPayload(user))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	payload := userPayload(user)
	wallet, err := h.wallet.Wallet(r.Context(), user.ID)
	if err == nil {
		payload["public_key"] = wallet.PublicKey
	} else if err != services.ErrWalletNotFound {
		respondError(w, http.StatusInternalServerError, "unable to load wallet")
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

func userPayload(user models.User) map[string]any {
	return map[string]any{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"created_at":   user.CreatedAt,
	}
}
