package handlers

import (
	"encoding/json"
	"net/http"

	"felix/internal/db"
	"felix/internal/money"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type serviceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	IsActive    *bool  `json:"is_active"`
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.services.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load services")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	price, err := money.ParsePrice(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid price")
		return
	}
	id := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.services.Create(r.Context(), tx, id, user.ID, req.Name, req.Description, price); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, user.ID, "service_created", "service", id, "")
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "a service with this name already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create service")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	serviceID := chi.URLParam(r, "id")
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	price, err := money.ParsePrice(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid price")
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	var affected int64
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		affected, err = h.services.Update(r.Context(), tx, serviceID, user.ID, req.Name, req.Description, price, isActive)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		return h.audit.Log(r.Context(), tx, user.ID, "service_updated", "service", serviceID, "")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update service")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "service not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": serviceID})
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	serviceID := chi.URLParam(r, "id")
	var affected int64
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		affected, err = h.services.Delete(r.Context(), tx, serviceID, user.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		return h.audit.Log(r.Context(), tx, user.ID, "service_deleted", "service", serviceID, "")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete service")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "service not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
