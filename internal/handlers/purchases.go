package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"felix/internal/services"

	"github.com/go-chi/chi/v5"
)

type buyRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) BuyService(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	serviceID := chi.URLParam(r, "id")
	req := buyRequest{Quantity: 1}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid payload")
			return
		}
	}
	result, err := h.purchase.Purchase(r.Context(), user.ID, serviceID, req.Quantity)
	if err != nil {
		var notRecorded *services.NotRecordedError
		switch {
		case err == services.ErrServiceNotFound:
			respondError(w, http.StatusNotFound, "service not found")
		case err == services.ErrServiceInactive:
			respondError(w, http.StatusBadRequest, "service is no longer available")
		case err == services.ErrSelfPurchase:
			respondError(w, http.StatusBadRequest, "cannot purchase your own service")
		case err == services.ErrBuyerWalletMissing:
			respondError(w, http.StatusBadRequest, "create a wallet before purchasing")
		case err == services.ErrSellerWalletMissing:
			respondError(w, http.StatusBadRequest, "the seller has no wallet to receive payment")
		case err == services.ErrInvalidQuantity:
			respondError(w, http.StatusBadRequest, "quantity must be a positive integer")
		case errors.As(err, &notRecorded):
			respondJSON(w, http.StatusBadGateway, map[string]string{
				"error":            "payment accepted but purchase record failed",
				"transaction_hash": notRecorded.TransactionHash,
			})
		default:
			if respondCommonError(w, err) {
				return
			}
			respondError(w, http.StatusInternalServerError, "purchase failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *Handler) MyPurchases(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	purchases, err := h.purchases.ListByBuyer(r.Context(), user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load purchases")
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}
