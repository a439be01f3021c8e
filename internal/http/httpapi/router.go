package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aayush-wiz/doodle-ai-app/internal/http/handlers"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
	"github.com/aayush-wiz/doodle-ai-app/internal/middleware"
)

// Options carries the router's cross-cutting configuration.
type Options struct {
	Logger          infra.Logger
	DefaultLanguage string
	CountryLookup   middleware.CountryLookup
	AllowedOrigins  []string
	RateLimitPerMin int
	StaticDir       string // filesystem root served under /static
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLanguage, opts.CountryLookup),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/healthz", app.Health)
	r.Get("/voices", app.ListVoices)
	r.Get("/videos", app.ListVideos)
	r.Get("/history", app.ListHistory)
	r.Get("/ws/generate", app.Generate)

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
