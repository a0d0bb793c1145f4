package handlers

import (
	"encoding/json"
	"net/http"

	"felix/internal/services"
)

type issueRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// IssueAsset mints platform asset units from the issuing account to a
// recipient that has a trustline for it.
func (h *Handler) IssueAsset(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	hash, err := h.issuer.Issue(r.Context(), req.Recipient, req.Amount)
	if err != nil {
		switch {
		case err == services.ErrIssuerNotConfigured:
			respondError(w, http.StatusServiceUnavailable, "issuing is not configured")
		default:
			if respondCommonError(w, err) {
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to issue asset")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"transaction_hash": hash})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
