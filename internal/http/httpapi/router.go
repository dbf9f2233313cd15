package httpapi

import (
	"net/http"
	"time"

	"studio/internal/http/handlers"
	"studio/internal/infra"
	appmw "studio/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options holds the router-level settings that do not belong to handlers.
type Options struct {
	Logger            *infra.Logger
	DefaultLocale     string
	AllowedOrigins    []string
	SecureCookies     bool
	GenerateRateLimit int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	r := chi.NewRouter()

	r.Use(
		appmw.RequestID,
		middleware.RealIP,
		appmw.Logger(logger),
		middleware.Recoverer,
		appmw.CORS(opts.AllowedOrigins),
		appmw.I18N(opts.DefaultLocale),
	)

	// Health
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/models", app.Models)

	r.Group(func(r chi.Router) {
		r.Use(appmw.Session(app.Sessions, opts.SecureCookies))

		r.With(appmw.RateLimit(opts.GenerateRateLimit, time.Minute)).Post("/v1/generate", app.Generate)
		r.Get("/v1/history", app.History)
		r.Get("/v1/outputs/last", app.LastOutput)
		r.Delete("/v1/outputs/last", app.DeleteLast)
		r.Post("/v1/prompts", app.SavePrompt)
		r.Delete("/v1/session", app.EndSession)
	})

	return r
}
