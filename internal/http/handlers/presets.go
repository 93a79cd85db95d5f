package handlers

import (
	"net/http"

	"github.com/runrevr/ImageRefresh-sub002/internal/preset"
)

// Presets lists the style presets clients can attach to a prompt.
func (a *App) Presets(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, preset.List())
}
