package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/runrevr/ImageRefresh-sub002/internal/domain"
	"github.com/runrevr/ImageRefresh-sub002/internal/middleware"
	"github.com/runrevr/ImageRefresh-sub002/internal/preset"
	"github.com/runrevr/ImageRefresh-sub002/internal/providers/openai"
	"github.com/runrevr/ImageRefresh-sub002/internal/sqlinline"
	"github.com/runrevr/ImageRefresh-sub002/internal/transform"
)

type transformRequest struct {
	OriginalImagePath string `json:"originalImagePath"`
	Prompt            string `json:"prompt"`
	UserID            int64  `json:"userId"`
	ImageSize         string `json:"imageSize,omitempty"`
	IsEdit            bool   `json:"isEdit,omitempty"`
	EditsUsed         int    `json:"editsUsed,omitempty"`
	Preset            string `json:"preset,omitempty"`
	TransformationID  string `json:"transformationId,omitempty"`
}

type transformResponse struct {
	TransformedImageURL       string `json:"transformedImageUrl"`
	SecondTransformedImageURL string `json:"secondTransformedImageUrl,omitempty"`
}

// Transform sequences credit-check, optimization, the provider call and the
// ledger update for one request. The credit gate runs before any provider
// traffic and the ledger is only touched after a successful transformation,
// so failures never consume credit.
func (a *App) Transform(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "", "invalid payload")
		return
	}
	if req.OriginalImagePath == "" || req.Prompt == "" || req.UserID <= 0 {
		a.error(w, http.StatusBadRequest, "", "originalImagePath, prompt and userId are required")
		return
	}
	if a.ProviderReady != nil && !a.ProviderReady() {
		a.error(w, http.StatusServiceUnavailable, "", "image transformation is not configured")
		return
	}

	ref := domain.ParseImageRef(req.OriginalImagePath)
	localPath, err := ref.LocalPath(a.Config.UploadsDir, a.Config.ImageSourceAllowlist)
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "", err.Error())
		return
	}

	credits, ok := a.loadCredits(ctx, w, req.UserID)
	if !ok {
		return
	}
	editsUsed := req.EditsUsed
	if req.IsEdit && req.TransformationID != "" {
		row := a.SQL.QueryRow(ctx, sqlinline.QSelectTransformationEdits, req.TransformationID, req.UserID)
		if err := row.Scan(&editsUsed); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				a.error(w, http.StatusNotFound, "", "transformation not found")
				return
			}
			a.error(w, http.StatusInternalServerError, "", "failed to load transformation")
			return
		}
	}

	free := domain.IsFreeOperation(credits.FreeCreditsUsed, req.IsEdit, editsUsed)
	if !free && credits.PaidCredits <= 0 {
		a.error(w, http.StatusPaymentRequired, "credit_required",
			"You are out of credits. Purchase a credit pack to keep transforming images.")
		return
	}

	transformationID := uuid.NewString()
	if _, err := a.SQL.Exec(ctx, sqlinline.QInsertTransformation, transformationID, req.UserID, localPath, req.Prompt); err != nil {
		a.error(w, http.StatusInternalServerError, "", "failed to record transformation")
		return
	}
	if _, err := a.SQL.Exec(ctx, sqlinline.QMarkTransformationProcessing, transformationID); err != nil {
		a.Logger.Warn().Err(err).Str("transformation_id", transformationID).Msg("failed to mark processing")
	}

	optimized, err := a.Optimizer.Optimize(ctx, localPath)
	if err != nil {
		a.failTransform(ctx, w, r, req.UserID, transformationID, start, err)
		return
	}

	result, err := a.Transformer.Transform(ctx, transform.Request{
		ImagePath: optimized,
		Prompt:    preset.Apply(req.Prompt, req.Preset),
		Size:      req.ImageSize,
	})
	if err != nil {
		a.failTransform(ctx, w, r, req.UserID, transformationID, start, err)
		return
	}

	a.settleCredit(ctx, req, free)

	secondPath := ""
	if len(result.Paths) > 1 {
		secondPath = result.Paths[1]
	}
	if _, err := a.SQL.Exec(ctx, sqlinline.QCompleteTransformation, transformationID, result.Paths[0], secondPath); err != nil {
		a.Logger.Error().Err(err).Str("transformation_id", transformationID).Msg("failed to persist completed transformation")
	}
	a.recordUsage(ctx, r, req.UserID, transformationID, true, time.Since(start))

	resp := transformResponse{TransformedImageURL: result.URLs[0]}
	if len(result.URLs) > 1 {
		resp.SecondTransformedImageURL = result.URLs[1]
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) loadCredits(ctx context.Context, w http.ResponseWriter, userID int64) (domain.Credits, bool) {
	var credits domain.Credits
	row := a.SQL.QueryRow(ctx, sqlinline.QSelectUserCredits, userID)
	if err := row.Scan(&credits.FreeCreditsUsed, &credits.PaidCredits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "", "user not found")
		} else {
			a.error(w, http.StatusInternalServerError, "", "failed to load credits")
		}
		return domain.Credits{}, false
	}
	return credits, true
}

// settleCredit applies exactly one ledger mutation per charged success: the
// first transformation flips the free flag, the free follow-up edit changes
// nothing, and everything else consumes one paid credit via a guarded
// decrement so the balance can never go negative.
func (a *App) settleCredit(ctx context.Context, req transformRequest, free bool) {
	switch {
	case free && !req.IsEdit:
		if _, err := a.SQL.Exec(ctx, sqlinline.QMarkFreeCreditUsed, req.UserID); err != nil {
			a.Logger.Error().Err(err).Int64("user_id", req.UserID).Msg("failed to mark free credit used")
		}
	case free && req.IsEdit:
		// First edit of a transformation stays inside the free allotment.
	default:
		tag, err := a.SQL.Exec(ctx, sqlinline.QConsumePaidCredit, req.UserID)
		if err != nil {
			a.Logger.Error().Err(err).Int64("user_id", req.UserID).Msg("failed to consume paid credit")
		} else if tag.RowsAffected() == 0 {
			a.Logger.Warn().Int64("user_id", req.UserID).Msg("paid credit raced to zero before decrement")
		}
	}
	if req.IsEdit && req.TransformationID != "" {
		if _, err := a.SQL.Exec(ctx, sqlinline.QIncrementEditCount, req.TransformationID); err != nil {
			a.Logger.Warn().Err(err).Str("transformation_id", req.TransformationID).Msg("failed to increment edit count")
		}
	}
}

func (a *App) failTransform(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int64, transformationID string, start time.Time, err error) {
	a.Logger.Error().Err(err).Str("transformation_id", transformationID).Msg("transformation failed")
	if _, execErr := a.SQL.Exec(ctx, sqlinline.QFailTransformation, transformationID, err.Error()); execErr != nil {
		a.Logger.Warn().Err(execErr).Str("transformation_id", transformationID).Msg("failed to persist failure state")
	}
	a.recordUsage(ctx, r, userID, transformationID, false, time.Since(start))

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, openai.ErrMissingAPIKey):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNoImageReturned), errors.Is(err, domain.ErrExternalAPI):
		status = http.StatusBadGateway
	}
	a.error(w, status, "", err.Error())
}

func (a *App) recordUsage(ctx context.Context, r *http.Request, userID int64, transformationID string, success bool, elapsed time.Duration) {
	country := middleware.CountryFromContext(r.Context())
	if _, err := a.SQL.Exec(ctx, sqlinline.QInsertUsageEvent, userID, transformationID, "transform", success, int(elapsed.Milliseconds()), country); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to record usage event")
	}
}
