package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"felix/internal/asset"
	"felix/internal/ledger"
	"felix/internal/middleware"
	"felix/internal/models"
	"felix/internal/money"
	"felix/internal/services"
	"felix/internal/validator"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// currentUser resolves the authenticated principal to the local user row.
func (h *Handler) currentUser(r *http.Request) (models.User, error) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return models.User{}, errUnauthenticated
	}
	return h.users.GetByKeycloakID(r.Context(), principal.KeycloakID)
}

var errUnauthenticated = errors.New("unauthenticated")

// respondCommonError handles the error cases shared by every
// ledger-touching handler. Returns false when the error was not one of
// them and the caller should map it itself.
func respondCommonError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case err == errUnauthenticated:
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case err == sql.ErrNoRows:
		respondError(w, http.StatusNotFound, "user not registered")
	case err == services.ErrWalletNotFound:
		respondError(w, http.StatusNotFound, "wallet not found")
	case err == services.ErrInvalidAddress:
		respondError(w, http.StatusBadRequest, "invalid account address")
	case err == services.ErrInvalidAssetCode:
		respondError(w, http.StatusBadRequest, "invalid asset code")
	case errors.Is(err, asset.ErrIssuerRequired):
		respondError(w, http.StatusBadRequest, "asset issuer is required for non-native assets")
	case err == money.ErrInvalidAmount || err == money.ErrNotPositive || err == money.ErrTooManyDecimals:
		respondError(w, http.StatusBadRequest, err.Error())
	case err == validator.ErrInvalidAddress || err == validator.ErrInvalidAssetCode:
		respondError(w, http.StatusBadRequest, err.Error())
	case err == ledger.ErrAccountNotFound:
		respondError(w, http.StatusNotFound, "account not found on the ledger")
	default:
		var rej *ledger.RejectionError
		if errors.As(err, &rej) {
			respondError(w, http.StatusBadRequest, rejectionMessage(rej))
			return true
		}
		var netErr *ledger.NetworkError
		if errors.As(err, &netErr) {
			respondError(w, http.StatusBadGateway, "ledger temporarily unavailable")
			return true
		}
		return false
	}
	return true
}

// rejectionMessage turns raw transaction result codes into a message a
// wallet user can act on. Unknown codes fall through to the raw code.
func rejectionMessage(rej *ledger.RejectionError) string {
	for _, code := range rej.OperationCodes {
		switch code {
		case "op_underfunded":
			return "insufficient balance for this payment"
		case "op_no_trust":
			return "the recipient has not established a trustline for this asset"
		case "op_no_destination":
			return "the destination account does not exist"
		case "op_no_issuer":
			return "the asset issuer does not exist"
		case "op_line_full":
			return "the recipient's trustline limit would be exceeded"
		case "op_low_reserve":
			return "the account balance would drop below the minimum reserve"
		case "op_src_no_trust":
			return "you have not established a trustline for this asset"
		}
	}
	switch rej.TransactionCode {
	case "tx_bad_seq":
		return "transaction sequence conflict, please try again"
	case "tx_insufficient_fee":
		return "transaction fee too low"
	}
	return "transaction rejected: " + rej.Error()
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
