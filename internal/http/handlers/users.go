package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/runrevr/ImageRefresh-sub002/internal/domain"
	"github.com/runrevr/ImageRefresh-sub002/internal/sqlinline"
)

type registerRequest struct {
	Email string `json:"email"`
}

type registerResponse struct {
	ID              int64 `json:"id"`
	FreeCreditsUsed bool  `json:"freeCreditsUsed"`
	PaidCredits     int   `json:"paidCredits"`
}

// RegisterUser creates a user account with the free credit still available.
// Registering an existing email returns the existing account unchanged.
func (a *App) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "", "invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		a.error(w, http.StatusBadRequest, "", "a valid email is required")
		return
	}

	var user domain.User
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertUser, email)
	if err := row.Scan(&user.ID, &user.FreeCreditsUsed, &user.PaidCredits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusConflict, "", "email is already registered")
			return
		}
		a.Logger.Error().Err(err).Msg("failed to register user")
		a.error(w, http.StatusInternalServerError, "", "failed to register user")
		return
	}
	a.json(w, http.StatusCreated, registerResponse{
		ID:              user.ID,
		FreeCreditsUsed: user.FreeCreditsUsed,
		PaidCredits:     user.PaidCredits,
	})
}
