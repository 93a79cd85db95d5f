package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/runrevr/ImageRefresh-sub002/internal/billing"
	"github.com/runrevr/ImageRefresh-sub002/internal/infra"
	"github.com/runrevr/ImageRefresh-sub002/internal/storage"
	"github.com/runrevr/ImageRefresh-sub002/internal/transform"
)

// ImageOptimizer normalizes an uploaded image for submission to the provider.
type ImageOptimizer interface {
	Optimize(ctx context.Context, srcPath string) (string, error)
}

// Transformer runs the provider call chain and persists the results.
type Transformer interface {
	Transform(ctx context.Context, req transform.Request) (*transform.Result, error)
}

// App is the handler container holding every injected dependency.
type App struct {
	Config      *infra.Config
	Logger      zerolog.Logger
	SQL         infra.SQLExecutor
	Store       *storage.FileStore
	Optimizer   ImageOptimizer
	Transformer Transformer
	Billing     *billing.Service

	// ProviderReady gates the transform endpoint: when the external provider
	// has no credentials the handler fails fast instead of attempting a call.
	ProviderReady func() bool
}

// NewApp assembles the handler container.
func NewApp(cfg *infra.Config, logger zerolog.Logger, sql infra.SQLExecutor, store *storage.FileStore, opt ImageOptimizer, transformer Transformer, bill *billing.Service, providerReady func() bool) *App {
	return &App{
		Config:        cfg,
		Logger:        logger,
		SQL:           sql,
		Store:         store,
		Optimizer:     opt,
		Transformer:   transformer,
		Billing:       bill,
		ProviderReady: providerReady,
	}
}

type errorBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, errorBody{Error: code, Message: msg})
}
