package handlers

import (
	"io"
	"net/http"

	"github.com/runrevr/ImageRefresh-sub002/internal/billing"
	"github.com/runrevr/ImageRefresh-sub002/internal/sqlinline"
)

const maxWebhookBytes = 1 << 20

// StripeWebhook credits purchased packs when checkout completes. Unhandled
// event types are acknowledged so Stripe stops retrying them.
func (a *App) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if a.Billing == nil || !a.Billing.Enabled() {
		a.error(w, http.StatusServiceUnavailable, "", "billing is not configured")
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "", "failed to read webhook payload")
		return
	}
	event, err := a.Billing.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		a.Logger.Warn().Err(err).Msg("rejected stripe webhook")
		a.error(w, http.StatusBadRequest, "", "invalid webhook payload")
		return
	}
	if event.Type != "checkout.session.completed" {
		a.json(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	userID, credits, err := billing.CreditsFromEvent(event)
	if err != nil {
		a.Logger.Error().Err(err).Str("event_id", event.ID).Msg("checkout session missing credit metadata")
		a.error(w, http.StatusBadRequest, "", "checkout session missing credit metadata")
		return
	}
	tag, err := a.SQL.Exec(r.Context(), sqlinline.QAddPaidCredits, userID, credits)
	if err != nil {
		a.Logger.Error().Err(err).Int64("user_id", userID).Msg("failed to add purchased credits")
		a.error(w, http.StatusInternalServerError, "", "failed to add purchased credits")
		return
	}
	if tag.RowsAffected() == 0 {
		a.Logger.Warn().Int64("user_id", userID).Str("event_id", event.ID).Msg("purchase credited to unknown user")
	}
	a.json(w, http.StatusOK, map[string]bool{"received": true})
}
