package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"nexus/internal/adapter/repo"
	"nexus/internal/dashboard"
	"nexus/internal/http/handlers"
	httpapi "nexus/internal/http/httpapi"
	"nexus/internal/identity"
	"nexus/internal/infra"
	"nexus/internal/infra/credentials"
	"nexus/internal/infra/geoip"
	"nexus/internal/listings"
	"nexus/internal/middleware"
	"nexus/internal/offers"
	"nexus/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	ctx := context.Background()

	checks := map[string]handlers.HealthCheck{}

	store, storeCheck, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()
	if storeCheck != nil {
		checks["store"] = storeCheck
	}

	sessions, sessionCheck, closeSessions := openSessions(ctx, cfg, logger)
	defer closeSessions()
	if sessionCheck != nil {
		checks["sessions"] = sessionCheck
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	metrics := infra.NewMetrics()

	users := repo.NewUserRepository(store)
	startups := repo.NewStartupRepository(store, logger)
	requests := repo.NewRequestRepository(store, logger)
	investments := repo.NewInvestmentRepository(store, logger)

	provider := identity.NewLocal(
		credentials.NewStore(store, 0),
		users,
		sessions,
		identity.NewTokens(cfg.JWTSecret),
		cfg.SessionTTL,
		logger,
	)

	app := handlers.NewApp(
		provider,
		users,
		listings.NewService(startups, logger),
		offers.NewService(startups, requests, investments, users, metrics, logger),
		dashboard.NewAssembler(startups, requests, logger),
		logger,
	)
	app.Checks = checks

	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   lookup,
		Observer:        metrics,
		MetricsHandler:  metrics.Handler(),
	})

	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		logger.Info().
			Str("store", cfg.StoreDriver).
			Str("sessions", cfg.SessionDriver).
			Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
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
	logger.Info().Msg("server stopped")
}

// openStore returns the document store, a health probe (nil for memory) and
// a close func.
func openStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (storage.Store, handlers.HealthCheck, func()) {
	if cfg.StoreDriver == infra.DriverMemory {
		logger.Warn().Msg("using in-memory document store; data is lost on restart")
		return storage.NewMemory(), nil, func() {}
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	return storage.NewPostgres(infra.NewSQLRunner(pool, logger)), pool.Ping, pool.Close
}

func openSessions(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (identity.SessionStore, handlers.HealthCheck, func()) {
	if cfg.SessionDriver != infra.DriverRedis {
		return identity.NewMemorySessions(), nil, func() {}
	}
	client, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return identity.NewRedisSessions(client), ping, func() { _ = client.Close() }
}
