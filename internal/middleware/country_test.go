package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveCountryHeaderHint(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("CF-IPCountry", "de")
	if got := ResolveCountry(r, nil); got != "DE" {
		t.Fatalf("country = %q, want DE", got)
	}
}

func TestResolveCountryAcceptLanguageRegion(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	if got := ResolveCountry(r, nil); got != "GB" {
		t.Fatalf("country = %q, want GB", got)
	}
}

func TestResolveCountryLookupFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:4455"
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.9" {
			t.Fatalf("lookup ip = %q", ip)
		}
		return "us", nil
	}
	if got := ResolveCountry(r, lookup); got != "US" {
		t.Fatalf("country = %q, want US", got)
	}
}

func TestResolveCountryLookupErrorIgnored(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:4455"
	lookup := func(string) (string, error) { return "", errors.New("no database") }
	if got := ResolveCountry(r, lookup); got != "" {
		t.Fatalf("country = %q, want empty", got)
	}
}

func TestCountryMiddlewareStoresContextValue(t *testing.T) {
	var seen string
	handler := Country(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CountryFromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Country-Code", "fr")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if seen != "FR" {
		t.Fatalf("country = %q, want FR", seen)
	}
}

func TestClientIPForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := ClientIP(r); got != "198.51.100.7" {
		t.Fatalf("ip = %q", got)
	}
}
