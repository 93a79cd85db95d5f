package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/runrevr/ImageRefresh-sub002/internal/billing"
)

// Credits reports the remaining balance for a user.
func (a *App) Credits(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		a.error(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	credits, ok := a.loadCredits(r.Context(), w, userID)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, credits)
}

type checkoutRequest struct {
	UserID int64  `json:"userId"`
	PackID string `json:"packId"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// CheckoutSession creates a Stripe checkout session for a credit pack.
func (a *App) CheckoutSession(w http.ResponseWriter, r *http.Request) {
	if a.Billing == nil || !a.Billing.Enabled() {
		a.error(w, http.StatusServiceUnavailable, "", "billing is not configured")
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "", "invalid payload")
		return
	}
	if req.UserID <= 0 {
		a.error(w, http.StatusBadRequest, "", "userId is required")
		return
	}
	pack, ok := billing.PackByID(req.PackID)
	if !ok {
		a.error(w, http.StatusBadRequest, "", "unknown credit pack")
		return
	}
	if _, ok := a.loadCredits(r.Context(), w, req.UserID); !ok {
		return
	}
	checkoutURL, err := a.Billing.CreateCheckoutSession(req.UserID, pack)
	if err != nil {
		a.Logger.Error().Err(err).Int64("user_id", req.UserID).Msg("failed to create checkout session")
		a.error(w, http.StatusBadGateway, "", "failed to create checkout session")
		return
	}
	a.json(w, http.StatusOK, checkoutResponse{CheckoutURL: checkoutURL})
}

// Packs lists the purchasable credit packs.
func (a *App) Packs(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, billing.Packs)
}
