package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safetrail/server/internal/adapters/cache"
	"github.com/safetrail/server/internal/adapters/database"
	"github.com/safetrail/server/internal/adapters/events"
	"github.com/safetrail/server/internal/adapters/providers/mapmatch"
	"github.com/safetrail/server/internal/api/handlers"
	"github.com/safetrail/server/internal/api/middleware"
	"github.com/safetrail/server/internal/api/routes"
	"github.com/safetrail/server/internal/application/services"
	"github.com/safetrail/server/internal/domain/providers"
	"github.com/safetrail/server/internal/domain/repositories"
	"github.com/safetrail/server/internal/infrastructure/clients/osrm"
	"github.com/safetrail/server/internal/infrastructure/clients/postgres"
	"github.com/safetrail/server/internal/infrastructure/clients/redis"
	"github.com/safetrail/server/internal/infrastructure/notifications"
	"github.com/safetrail/server/internal/infrastructure/observability"
	"github.com/safetrail/server/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry is optional; the service runs without an exporter.
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// Redis is optional: without it the service runs with no response cache
	// and no real-time alert events.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		logger.Info().Msg("event bus initialized")
	} else {
		logger.Info().Msg("event bus disabled (Redis not available)")
	}

	// Adapters
	fixAdapter := database.NewFixAdapter(pgClient)
	sessionAdapter := database.NewSessionAdapter(pgClient)
	deviceAdapter := database.NewDeviceAdapter(pgClient)
	alertAdapter := database.NewAlertAdapter(pgClient)

	var trustAdapter repositories.TrustRepository = database.NewTrustAdapter(pgClient)
	if cacheProvider != nil {
		trustAdapter = database.NewCachedTrustAdapter(trustAdapter, cacheProvider)
		logger.Info().Msg("trust adapter wrapped with caching layer")
	}

	// Map matching provider
	var matchProvider providers.MapMatchProvider
	if cfg.OSRM.BaseURL == "" {
		logger.Warn().Msg("OSRM_URL is not set, using mock map-match provider")
		matchProvider = mapmatch.NewMockProvider()
	} else {
		matchProvider = mapmatch.NewOSRMProvider(osrm.NewClient(&cfg.OSRM), cacheProvider)
	}

	// Push notifications
	var notifier providers.NotificationProvider
	if cfg.Push.FCMAPIKey == "" {
		logger.Warn().Msg("FCM_API_KEY is not set, push notifications disabled")
		notifier = notifications.NoopSender{}
	} else {
		sender, err := notifications.NewFCMSender(&cfg.Push)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize FCM sender, push notifications disabled")
			notifier = notifications.NoopSender{}
		} else {
			notifier = sender
		}
	}

	// Services
	scorer := services.NewScorer(cfg.Scoring)
	ingestionService := services.NewIngestionService(fixAdapter, sessionAdapter, deviceAdapter, metrics)
	analyticsService := services.NewAnalyticsService(fixAdapter, alertAdapter, trustAdapter, scorer, cfg.Scoring)
	overlapService := services.NewOverlapService(fixAdapter, sessionAdapter, trustAdapter)
	sessionService := services.NewSessionService(sessionAdapter)
	trustService := services.NewTrustService(trustAdapter)
	alertService := services.NewAlertService(alertAdapter, notifier)
	if eventBus != nil {
		alertService.SetEventBus(eventBus)
	}

	// Handlers
	locationHandler := handlers.NewLocationHandler(ingestionService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, overlapService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	alertHandler := handlers.NewAlertHandler(alertService)
	trustHandler := handlers.NewTrustHandler(trustService)
	routeHandler := handlers.NewRouteHandler(matchProvider)

	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		sseHandler = handlers.NewSSEHandler(eventBus)
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
		logger.Info().Msg("cache middleware initialized")
	}

	router := routes.NewRouter(
		locationHandler,
		analyticsHandler,
		sessionHandler,
		alertHandler,
		trustHandler,
		routeHandler,
		sseHandler,
		cacheMiddleware,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing event bus")
		}
	}

	logger.Info().Msg("server stopped")
}
