package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/routes"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/catalog"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/storefront"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/config"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

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

	logg = logger.FromConfig("api", cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	backend, err := openBackend(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open cart storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logg.Error(context.Background(), "error closing cart storage", err)
		}
	}()

	catalogClient, err := catalog.NewClient(cfg.Catalog.BaseURL,
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithMetrics(storefrontMetrics),
	)
	if err != nil {
		logg.Error(ctx, "failed to create catalog client", err)
		os.Exit(1)
	}
	cache := catalog.NewCache(catalogClient, storefrontMetrics)

	limits := render.Limits{CardTitle: cfg.Render.CardTitleMax, CartTitle: cfg.Render.CartTitleMax}
	views, err := render.NewRenderer(limits)
	if err != nil {
		logg.Error(ctx, "failed to parse templates", err)
		os.Exit(1)
	}

	opts := []storefront.Option{
		storefront.WithLogger(logg),
		storefront.WithMetrics(storefrontMetrics),
	}
	if backend.redis != nil {
		opts = append(opts, storefront.WithRateLimiter(backend.redis))
	}
	dispatcher, err := storefront.NewDispatcher(catalogClient, cache, backend.storage, storefront.Settings{
		StorageKey:       cfg.Cart.StorageKey,
		TrendingLimit:    cfg.Catalog.TrendingLimit,
		Limits:           limits,
		NewsletterLimit:  int64(cfg.Newsletter.Limit),
		NewsletterWindow: cfg.Newsletter.Window,
	}, opts...)
	if err != nil {
		logg.Error(ctx, "failed to create storefront", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Cart.NormalizedBackend(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dispatcher, views, registry, backend.checks...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
