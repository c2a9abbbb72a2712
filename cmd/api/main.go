package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lebraggaa/spool-tracker/api/routes"
	"github.com/lebraggaa/spool-tracker/internal/auth"
	"github.com/lebraggaa/spool-tracker/internal/dashboard"
	"github.com/lebraggaa/spool-tracker/internal/events"
	"github.com/lebraggaa/spool-tracker/internal/importer"
	"github.com/lebraggaa/spool-tracker/internal/labels"
	"github.com/lebraggaa/spool-tracker/internal/spools"
	"github.com/lebraggaa/spool-tracker/internal/transitions"
	"github.com/lebraggaa/spool-tracker/internal/users"
	"github.com/lebraggaa/spool-tracker/pkg/auth/session"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/db"
	"github.com/lebraggaa/spool-tracker/pkg/logger"
	"github.com/lebraggaa/spool-tracker/pkg/metrics"
	"github.com/lebraggaa/spool-tracker/pkg/migrate"
	"github.com/lebraggaa/spool-tracker/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	spoolRepo := spools.NewRepository(dbClient.DB())
	eventRepo := events.NewRepository(dbClient.DB())

	if err := auth.SeedAdmin(context.Background(), cfg, logg, userRepo); err != nil {
		logg.Error(context.Background(), "failed to seed admin account", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	spoolService, err := spools.NewService(spools.ServiceParams{
		SpoolRepo: spoolRepo,
		EventRepo: eventRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create spool service", err)
		os.Exit(1)
	}

	transitionService, err := transitions.NewService(transitions.ServiceParams{
		SpoolRepo: spoolRepo,
		EventRepo: eventRepo,
		TxRunner:  dbClient,
		Flags:     cfg.FeatureFlags,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transition service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		SpoolRepo: spoolRepo,
		EventRepo: eventRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	importService, err := importer.NewService(importer.ServiceParams{
		SpoolRepo: spoolRepo,
		Config:    cfg.Import,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	labelService, err := labels.NewService(labels.ServiceParams{
		SpoolRepo: spoolRepo,
		Config:    cfg.Labels,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create label service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:            cfg,
			Logger:            logg,
			DBPinger:          dbClient,
			RedisClient:       redisClient,
			Sessions:          sessionManager,
			AuthService:       authService,
			SpoolService:      spoolService,
			TransitionService: transitionService,
			DashboardService:  dashboardService,
			ImportService:     importService,
			LabelService:      labelService,
			HTTPMetrics:       metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
