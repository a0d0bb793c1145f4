package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"felix/internal/services"
)

func (h *Handler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	wallet, err := h.wallet.CreateWallet(r.Context(), user.ID)
	if err != nil {
		switch {
		case err == services.ErrWalletExists:
			respondError(w, http.StatusConflict, "wallet already exists")
		case errors.Is(err, services.ErrFundingFailed):
			respondError(w, http.StatusBadGateway, "unable to fund new account")
		default:
			if respondCommonError(w, err) {
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to create wallet")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"public_key": wallet.PublicKey,
		"created_at": wallet.CreatedAt,
	})
}

func (h *Handler) MyWallet(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	wallet, err := h.wallet.Wallet(r.Context(), user.ID)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load wallet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"public_key":   wallet.PublicKey,
		"is_multi_sig": wallet.IsMultiSig,
		"created_at":   wallet.CreatedAt,
	})
}

func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	address, balances, err := h.wallet.Balances(r.Context(), user.ID)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load balances")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"public_key": address,
		"balances":   balances,
	})
}

type trustRequest struct {
	AssetCode   string `json:"asset_code"`
	AssetIssuer string `json:"asset_issuer"`
}

func (h *Handler) EstablishTrustline(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	var req trustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	hash, err := h.wallet.EstablishTrustline(r.Context(), user.ID, req.AssetCode, req.AssetIssuer)
	if err != nil {
		switch {
		case err == services.ErrNativeTrustline:
			respondError(w, http.StatusBadRequest, "the native asset needs no trustline")
		default:
			if respondCommonError(w, err) {
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to establish trustline")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"transaction_hash": hash})
}

type sendRequest struct {
	Destination string `json:"destination"`
	AssetCode   string `json:"asset_code"`
	AssetIssuer string `json:"asset_issuer"`
	Amount      string `json:"amount"`
	Memo        string `json:"memo"`
}

func (h *Handler) SendAsset(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	hash, err := h.wallet.SendAsset(r.Context(), services.SendAssetRequest{
		UserID:      user.ID,
		Destination: req.Destination,
		AssetCode:   req.AssetCode,
		AssetIssuer: req.AssetIssuer,
		Amount:      req.Amount,
		Memo:        req.Memo,
	})
	if err != nil {
		switch {
		case err == services.ErrMemoTooLong:
			respondError(w, http.StatusBadRequest, "memo must be at most 28 characters")
		default:
			if respondCommonError(w, err) {
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to send payment")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"transaction_hash": hash})
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 20)
	address, entries, err := h.wallet.Transactions(r.Context(), user.ID, limit)
	if err != nil {
		if respondCommonError(w, err) {
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"public_key":   address,
		"transactions": entries,
	})
}
