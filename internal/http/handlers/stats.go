package handlers

import (
	"net/http"

	"github.com/runrevr/ImageRefresh-sub002/internal/sqlinline"
)

type statsResponse struct {
	TotalUsers           int64 `json:"totalUsers"`
	SuccessfulTransforms int64 `json:"successfulTransforms"`
	FailedTransforms     int64 `json:"failedTransforms"`
	TransformsLastDay    int64 `json:"transformsLastDay"`
}

// StatsSummary returns aggregate usage counters.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	var stats statsResponse
	row := a.SQL.QueryRow(r.Context(), sqlinline.QStatsSummary)
	if err := row.Scan(&stats.TotalUsers, &stats.SuccessfulTransforms, &stats.FailedTransforms, &stats.TransformsLastDay); err != nil {
		a.Logger.Error().Err(err).Msg("failed to load stats summary")
		a.error(w, http.StatusInternalServerError, "", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, stats)
}
