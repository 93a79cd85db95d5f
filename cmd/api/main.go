package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/runrevr/ImageRefresh-sub002/internal/billing"
	"github.com/runrevr/ImageRefresh-sub002/internal/http/handlers"
	"github.com/runrevr/ImageRefresh-sub002/internal/http/httpapi"
	"github.com/runrevr/ImageRefresh-sub002/internal/infra"
	"github.com/runrevr/ImageRefresh-sub002/internal/infra/geoip"
	"github.com/runrevr/ImageRefresh-sub002/internal/middleware"
	"github.com/runrevr/ImageRefresh-sub002/internal/optimizer"
	"github.com/runrevr/ImageRefresh-sub002/internal/providers/openai"
	"github.com/runrevr/ImageRefresh-sub002/internal/storage"
	"github.com/runrevr/ImageRefresh-sub002/internal/transform"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, logger)

	store, err := storage.NewFileStore(cfg.UploadsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare uploads directory")
	}

	countryResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, usage events will omit country")
	}
	var countryLookup middleware.CountryLookup
	if countryResolver != nil {
		countryLookup = countryResolver.CountryCode
	}

	provider := openai.NewClient(openai.Options{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIModel,
		Logger:         &logger,
		RequestTimeout: cfg.OpenAITimeout,
	})
	if !provider.HasCredentials() {
		logger.Warn().Msg("OPENAI_API_KEY is not set, transform requests will be rejected")
	}

	transformer := transform.NewService(provider, store, cfg.StorageBaseURL, logger)
	opt := optimizer.New(store, logger)
	bill := billing.NewService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, logger)

	app := handlers.NewApp(cfg, logger, runner, store, opt, transformer, bill, provider.HasCredentials)
	router := httpapi.NewRouter(app, countryLookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if countryResolver != nil {
		if closer, ok := countryResolver.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	logger.Info().Msg("server stopped")
}
