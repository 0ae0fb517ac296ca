package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"nexus/internal/domain"
	"nexus/internal/http/handlers"
	"nexus/internal/middleware"
)

// Options carries the cross-cutting pieces the router wires around the handlers.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	Observer        middleware.HTTPObserver
	MetricsHandler  http.Handler
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
	)
	if opts.Observer != nil {
		r.Use(middleware.Metrics(opts.Observer))
	}
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}
	r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
		r.Get("/valuation", app.Valuation)
		r.Get("/stats", app.StatsSummary)

		r.Post("/auth/register", app.Register)
		r.Post("/auth/login", app.Login)
		r.Post("/auth/password-reset", app.PasswordReset)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(app.Identity))

			r.Post("/auth/logout", app.Logout)
			r.Get("/me", app.Me)
			r.Patch("/me", app.UpdateMe)

			r.Get("/startups", app.BrowseStartups)
			r.Get("/startups/{id}", app.GetStartup)
			r.Get("/requests/{id}", app.GetRequest)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.UserRoleStartup))
				r.Post("/startups", app.CreateStartup)
				r.Patch("/startups/{id}", app.UpdateStartup)
				r.Post("/requests/{id}/decision", app.DecideRequest)
				r.Get("/dashboard/startup", app.OwnerDashboard)
				r.Get("/notifications", app.Notifications)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.UserRoleInvestor))
				r.Post("/startups/{id}/requests", app.SubmitRequest)
				r.Get("/dashboard/investor", app.InvestorPortfolio)
			})
		})
	})

	return r
}
