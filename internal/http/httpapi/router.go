package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/runrevr/ImageRefresh-sub002/internal/http/handlers"
	"github.com/runrevr/ImageRefresh-sub002/internal/middleware"
)

// NewRouter assembles the HTTP surface. countryLookup may be nil when no
// GeoIP database is configured.
func NewRouter(app *handlers.App, countryLookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.RequestID,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSAllowedOrigins),
		middleware.Country(countryLookup),
	)

	r.Get("/v1/healthz", app.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute)).
			Post("/transform", app.Transform)
		r.Post("/upload", app.Upload)
		r.Post("/users", app.RegisterUser)
		r.Get("/presets", app.Presets)

		r.Route("/credits", func(r chi.Router) {
			r.Get("/packs", app.Packs)
			r.Post("/checkout", app.CheckoutSession)
			r.Get("/{userID}", app.Credits)
		})

		r.Route("/transformations", func(r chi.Router) {
			r.Get("/{id}", app.Transformation)
			r.Get("/{id}/download", app.DownloadTransformation)
		})

		r.Post("/stripe/webhook", app.StripeWebhook)
		r.Get("/stats/summary", app.StatsSummary)
	})

	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.Config.UploadsDir)))
	r.Get("/uploads/*", uploads.ServeHTTP)

	return r
}
