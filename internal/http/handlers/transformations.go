package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/runrevr/ImageRefresh-sub002/internal/domain"
	"github.com/runrevr/ImageRefresh-sub002/internal/sqlinline"
	"github.com/runrevr/ImageRefresh-sub002/pkg/zip"
)

type transformationResponse struct {
	ID                    string    `json:"id"`
	UserID                int64     `json:"userId"`
	OriginalImagePath     string    `json:"originalImagePath"`
	Prompt                string    `json:"prompt"`
	Status                string    `json:"status"`
	TransformedPath       string    `json:"transformedPath,omitempty"`
	SecondTransformedPath string    `json:"secondTransformedPath,omitempty"`
	EditCount             int       `json:"editCount"`
	ErrorMessage          string    `json:"errorMessage,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Transformation returns a single transformation record.
func (a *App) Transformation(w http.ResponseWriter, r *http.Request) {
	record, ok := a.loadTransformation(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, record)
}

// DownloadTransformation streams the completed result images as a zip.
func (a *App) DownloadTransformation(w http.ResponseWriter, r *http.Request) {
	record, ok := a.loadTransformation(w, r)
	if !ok {
		return
	}
	if record.Status != string(domain.TransformationCompleted) || record.TransformedPath == "" {
		a.error(w, http.StatusConflict, "", "transformation has no completed results yet")
		return
	}

	var assets []zip.Asset
	for _, p := range []string{record.TransformedPath, record.SecondTransformedPath} {
		if p == "" {
			continue
		}
		data, err := a.Store.Read(r.Context(), path.Base(p))
		if err != nil {
			a.Logger.Warn().Err(err).Str("path", p).Msg("failed to read result file for archive")
			continue
		}
		assets = append(assets, zip.Asset{Filename: path.Base(p), Data: data})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "", "result files are no longer available")
		return
	}

	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "transformation-"+record.ID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) loadTransformation(w http.ResponseWriter, r *http.Request) (transformationResponse, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if _, err := uuid.Parse(id); err != nil {
		a.error(w, http.StatusBadRequest, "", "invalid transformation id")
		return transformationResponse{}, false
	}

	var record transformationResponse
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectTransformation, id)
	err := row.Scan(
		&record.ID, &record.UserID, &record.OriginalImagePath, &record.Prompt, &record.Status,
		&record.TransformedPath, &record.SecondTransformedPath,
		&record.EditCount, &record.ErrorMessage, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "", "transformation not found")
		} else {
			a.Logger.Error().Err(err).Str("transformation_id", id).Msg("failed to load transformation")
			a.error(w, http.StatusInternalServerError, "", "failed to load transformation")
		}
		return transformationResponse{}, false
	}
	return record, true
}
