package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lebraggaa/spool-tracker/api/controllers"
	"github.com/lebraggaa/spool-tracker/api/middleware"
	"github.com/lebraggaa/spool-tracker/internal/auth"
	"github.com/lebraggaa/spool-tracker/internal/dashboard"
	"github.com/lebraggaa/spool-tracker/internal/importer"
	"github.com/lebraggaa/spool-tracker/internal/labels"
	"github.com/lebraggaa/spool-tracker/internal/spools"
	"github.com/lebraggaa/spool-tracker/internal/transitions"
	"github.com/lebraggaa/spool-tracker/pkg/auth/session"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/db"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
	"github.com/lebraggaa/spool-tracker/pkg/logger"
	"github.com/lebraggaa/spool-tracker/pkg/metrics"
	"github.com/lebraggaa/spool-tracker/pkg/redis"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    db.Pinger
	RedisClient *redis.Client
	Sessions    session.AccessSessionChecker

	AuthService       auth.Service
	SpoolService      spools.Service
	TransitionService transitions.Service
	DashboardService  dashboard.Service
	ImportService     importer.Service
	LabelService      labels.Service

	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DBPinger, deps.RedisClient, logg))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Labels stay public so printed QR codes resolve without a login.
	r.Get("/qr/{tag}", controllers.SpoolLabel(deps.LabelService, cfg.Labels, logg))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RedisClient, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).
			Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Get("/spools", controllers.SpoolSearch(deps.SpoolService, logg))
		r.Post("/spools", controllers.SpoolRegister(deps.SpoolService, logg))
		r.Get("/spools/{id}", controllers.SpoolDetail(deps.SpoolService, logg))
		r.Get("/spools/{id}/events", controllers.SpoolEvents(deps.SpoolService, logg))
		r.Post("/spools/{id}/transitions", controllers.SpoolUpdate(deps.TransitionService, logg))

		r.Get("/dashboard", controllers.Dashboard(deps.DashboardService, logg))

		r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
			Post("/imports", controllers.ImportSpools(deps.ImportService, cfg.Import, logg))
	})

	return r
}
