package handlers

import "net/http"

// Healthz reports liveness plus whether the image provider is configured.
func (a *App) Healthz(w http.ResponseWriter, r *http.Request) {
	providerReady := a.ProviderReady == nil || a.ProviderReady()
	a.json(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"providerReady": providerReady,
	})
}
