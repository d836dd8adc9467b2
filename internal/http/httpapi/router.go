package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"contentgate/internal/http/handlers"
	"contentgate/internal/middleware"
)

// Options carries router-level knobs sourced from config.
type Options struct {
	AllowedOrigins  []string
	DefaultLocale   string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/stats", app.StatsSummary)

	r.Post("/v1/content/generate", app.ContentGenerate)
	r.Get("/v1/daily/{category}", app.DailyPick)

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Post("/", app.JobSubmit)
		r.Get("/{job_id}", app.JobStatus)
		r.Get("/{job_id}/export", app.JobExport)
	})

	r.Post("/v1/internal/sweep", app.SweepNow)

	return r
}
