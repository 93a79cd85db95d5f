package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Pack is a purchasable credit bundle. Prices are defined inline so checkout
// sessions do not depend on pre-provisioned Stripe price objects.
type Pack struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Credits     int    `json:"credits"`
	AmountCents int64  `json:"amountCents"`
}

// Packs lists the bundles offered at checkout.
var Packs = []Pack{
	{ID: "starter", Name: "Starter Pack", Credits: 5, AmountCents: 499},
	{ID: "standard", Name: "Standard Pack", Credits: 20, AmountCents: 1499},
	{ID: "studio", Name: "Studio Pack", Credits: 50, AmountCents: 2999},
}

// PackByID looks up a pack by identifier.
func PackByID(id string) (Pack, bool) {
	for _, pack := range Packs {
		if pack.ID == id {
			return pack, true
		}
	}
	return Pack{}, false
}

// Service wraps the Stripe SDK for credit purchases.
type Service struct {
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        zerolog.Logger
}

// NewService configures the Stripe integration. An empty secret key disables
// billing; handlers must check Enabled before use.
func NewService(secretKey, webhookSecret, successURL, cancelURL string, logger zerolog.Logger) *Service {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &Service{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		logger:        logger,
	}
}

// Enabled reports whether checkout sessions can be created.
func (s *Service) Enabled() bool {
	return s != nil && s.secretKey != ""
}

// CreateCheckoutSession opens a Stripe Checkout session for the pack and
// returns the hosted payment page URL. The user and credit amount travel in
// session metadata and come back through the webhook.
func (s *Service) CreateCheckoutSession(userID int64, pack Pack) (string, error) {
	if !s.Enabled() {
		return "", errors.New("billing: stripe is not configured")
	}
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(pack.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(pack.Name),
					},
				},
			},
		},
	}
	params.AddMetadata("userID", strconv.FormatInt(userID, 10))
	params.AddMetadata("credits", strconv.Itoa(pack.Credits))

	result, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create checkout session: %w", err)
	}
	s.logger.Info().
		Int64("user_id", userID).
		Str("pack", pack.ID).
		Msg("billing: checkout session created")
	return result.URL, nil
}

// ParseEvent verifies and decodes a webhook payload. Signature verification
// is skipped only when no webhook secret is configured (local development).
func (s *Service) ParseEvent(payload []byte, signature string) (stripe.Event, error) {
	if s.webhookSecret != "" {
		event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
		if err != nil {
			return stripe.Event{}, fmt.Errorf("billing: verify webhook: %w", err)
		}
		return event, nil
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, fmt.Errorf("billing: parse webhook: %w", err)
	}
	return event, nil
}

// CreditsFromEvent extracts the purchasing user and credit amount from a
// completed checkout session event.
func CreditsFromEvent(event stripe.Event) (int64, int, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return 0, 0, fmt.Errorf("billing: parse checkout session: %w", err)
	}
	userRaw, ok := sess.Metadata["userID"]
	if !ok {
		return 0, 0, errors.New("billing: userID missing from session metadata")
	}
	userID, err := strconv.ParseInt(userRaw, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("billing: invalid userID metadata: %w", err)
	}
	creditsRaw, ok := sess.Metadata["credits"]
	if !ok {
		return 0, 0, errors.New("billing: credits missing from session metadata")
	}
	credits, err := strconv.Atoi(creditsRaw)
	if err != nil || credits <= 0 {
		return 0, 0, fmt.Errorf("billing: invalid credits metadata %q", creditsRaw)
	}
	return userID, credits, nil
}
