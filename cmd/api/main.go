package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eddyjj92/compay-storefront/api/routes"
	cartsvc "github.com/eddyjj92/compay-storefront/internal/cart"
	"github.com/eddyjj92/compay-storefront/internal/chat"
	favsvc "github.com/eddyjj92/compay-storefront/internal/favorites"
	locationsvc "github.com/eddyjj92/compay-storefront/internal/location"
	"github.com/eddyjj92/compay-storefront/internal/page"
	"github.com/eddyjj92/compay-storefront/pkg/cache"
	"github.com/eddyjj92/compay-storefront/pkg/compay"
	"github.com/eddyjj92/compay-storefront/pkg/config"
	"github.com/eddyjj92/compay-storefront/pkg/instance"
	"github.com/eddyjj92/compay-storefront/pkg/logger"
	"github.com/eddyjj92/compay-storefront/pkg/metrics"
	"github.com/eddyjj92/compay-storefront/pkg/redis"
	"github.com/eddyjj92/compay-storefront/pkg/session"
)

const appVersion = "1.0.0"

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	upstreamMetrics := metrics.NewUpstreamMetrics(registry)

	cacheStore, err := cache.NewRedisStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cache store", err)
		os.Exit(1)
	}
	responseCache, err := cache.New(cacheStore, cfg.Cache.DefaultTTL, upstreamMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create response cache", err)
		os.Exit(1)
	}

	client, err := compay.NewClient(cfg.Compay, responseCache, upstreamMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create marketplace client", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.Session, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	cartService := cartsvc.NewService(client, logg)
	favoritesService := favsvc.NewService(client, logg)
	localeService := locationsvc.NewService(client, logg)
	chatGateway := chat.NewGateway(client, logg)
	renderer := page.NewRenderer(appVersion, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Logg:      logg,
			Client:    client,
			Sessions:  sessionManager,
			Renderer:  renderer,
			Cart:      cartService,
			Favorites: favoritesService,
			Locale:    localeService,
			Chat:      chatGateway,
			Store:     redisClient,
			Gatherer:  registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront server stopped unexpectedly", err)
		os.Exit(1)
	}
}
