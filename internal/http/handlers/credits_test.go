package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/runrevr/ImageRefresh-sub002/internal/billing"
	"github.com/runrevr/ImageRefresh-sub002/internal/infra"
	"github.com/runrevr/ImageRefresh-sub002/internal/sqlinline"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCredits_ReturnsBalance(t *testing.T) {
	sqlStub := &transformTestSQL{hasUser: true, freeCreditsUsed: true, paidCredits: 4}
	app := &App{Config: &infra.Config{}, Logger: zerolog.Nop(), SQL: sqlStub}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/credits/7", nil), "userID", "7")
	rr := httptest.NewRecorder()
	app.Credits(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		FreeCreditsUsed bool `json:"freeCreditsUsed"`
		PaidCredits     int  `json:"paidCredits"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.FreeCreditsUsed || resp.PaidCredits != 4 {
		t.Fatalf("unexpected balance: %+v", resp)
	}
}

func TestCredits_UnknownUserIsNotFound(t *testing.T) {
	app := &App{Config: &infra.Config{}, Logger: zerolog.Nop(), SQL: &transformTestSQL{}}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/credits/999", nil), "userID", "999")
	rr := httptest.NewRecorder()
	app.Credits(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestCredits_InvalidIDRejected(t *testing.T) {
	app := &App{Config: &infra.Config{}, Logger: zerolog.Nop(), SQL: &transformTestSQL{}}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/credits/abc", nil), "userID", "abc")
	rr := httptest.NewRecorder()
	app.Credits(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCheckoutSession_BillingDisabled(t *testing.T) {
	app := &App{Config: &infra.Config{}, Logger: zerolog.Nop(), SQL: &transformTestSQL{hasUser: true}}

	req := httptest.NewRequest(http.MethodPost, "/api/credits/checkout", strings.NewReader(`{"userId":7,"packId":"starter"}`))
	rr := httptest.NewRecorder()
	app.CheckoutSession(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestCheckoutSession_UnknownPackRejected(t *testing.T) {
	bill := billing.NewService("sk_test_123", "", "http://localhost/success", "http://localhost/cancel", zerolog.Nop())
	app := &App{Config: &infra.Config{}, Logger: zerolog.Nop(), SQL: &transformTestSQL{hasUser: true}, Billing: bill}

	req := httptest.NewRequest(http.MethodPost, "/api/credits/checkout", strings.NewReader(`{"userId":7,"packId":"mega"}`))
	rr := httptest.NewRecorder()
	app.CheckoutSession(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestStripeWebhook_CreditsCompletedCheckout(t *testing.T) {
	bill := billing.NewService("sk_test_123", "", "http://localhost/success", "http://localhost/cancel", zerolog.Nop())
	sqlStub := &transformTestSQL{hasUser: true}
	app := &App{Config: &infra.Config{}, Logger: zerolog.Nop(), SQL: sqlStub, Billing: bill}

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"metadata":{"userID":"7","credits":"20"}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	app.StripeWebhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if got := sqlStub.countExec(sqlinline.QAddPaidCredits); got != 1 {
		t.Fatalf("credit grants = %d, want 1", got)
	}
	args := sqlStub.execArgs[len(sqlStub.execArgs)-1]
	if args[0] != int64(7) || args[1] != 20 {
		t.Fatalf("unexpected grant args: %#v", args)
	}
}

func TestStripeWebhook_IgnoresOtherEvents(t *testing.T) {
	bill := billing.NewService("sk_test_123", "", "http://localhost/success", "http://localhost/cancel", zerolog.Nop())
	sqlStub := &transformTestSQL{hasUser: true}
	app := &App{Config: &infra.Config{}, Logger: zerolog.Nop(), SQL: sqlStub, Billing: bill}

	payload := []byte(`{"id":"evt_2","type":"payment_intent.created","data":{"object":{}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	app.StripeWebhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := sqlStub.countExec(sqlinline.QAddPaidCredits); got != 0 {
		t.Fatalf("credit grants = %d, want 0", got)
	}
}
