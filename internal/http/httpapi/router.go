package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

// NewRouter assembles the HTTP surface: the generation API, the read-only
// image directory, and a health probe.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
		r.Post("/generate", app.Generate)
		r.Get("/generations", app.ListGenerations)
	})

	r.Get(cfg.ImageRoutePrefix+"/{file}", app.ServeImage)

	return r
}
