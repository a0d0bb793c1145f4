package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"felix/internal/services"

	"github.com/go-chi/chi/v5"
)

type offerRequest struct {
	SellingCode   string `json:"selling_code"`
	SellingIssuer string `json:"selling_issuer"`
	BuyingCode    string `json:"buying_code"`
	BuyingIssuer  string `json:"buying_issuer"`
	Amount        string `json:"amount"`
	Price         string `json:"price"`
}

func (h *Handler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.exchange.CreateOffer(r.Context(), services.OfferRequest{
		UserID:        user.ID,
		SellingCode:   req.SellingCode,
		SellingIssuer: req.SellingIssuer,
		BuyingCode:    req.BuyingCode,
		BuyingIssuer:  req.BuyingIssuer,
		Amount:        req.Amount,
		Price:         req.Price,
	})
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create offer")
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

type cancelOfferRequest struct {
	SellingCode   string `json:"selling_code"`
	SellingIssuer string `json:"selling_issuer"`
	BuyingCode    string `json:"buying_code"`
	BuyingIssuer  string `json:"buying_issuer"`
}

func (h *Handler) CancelOffer(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	offerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || offerID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid offer id")
		return
	}
	var req cancelOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.exchange.CancelOffer(r.Context(), services.CancelOfferRequest{
		UserID:        user.ID,
		OfferID:       offerID,
		SellingCode:   req.SellingCode,
		SellingIssuer: req.SellingIssuer,
		BuyingCode:    req.BuyingCode,
		BuyingIssuer:  req.BuyingIssuer,
	})
	if err != nil {
		switch {
		case err == services.ErrInvalidOfferID:
			respondError(w, http.StatusBadRequest, "invalid offer id")
		default:
			if respondCommonError(w, err) {
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to cancel offer")
		}
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) MyOffers(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	address, offers, err := h.exchange.MyOffers(r.Context(), user.ID)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load offers")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"public_key": address,
		"offers":     offers,
	})
}

func (h *Handler) OrderBook(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	book, err := h.exchange.OrderBook(r.Context(),
		query.Get("selling_code"), query.Get("selling_issuer"),
		query.Get("buying_code"), query.Get("buying_issuer"))
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load order book")
		return
	}
	respondJSON(w, http.StatusOK, book)
}
