package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/cart"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/cron"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/config"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/db"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/metrics"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/migrate"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single retention cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.FromConfig("cron-worker", cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"backend": cfg.Cart.NormalizedBackend(),
	})

	if !cfg.Cart.IsSQL() {
		logg.Info(ctx, "cart retention only applies to sql backends; nothing to schedule")
		return
	}

	dbClient, err := db.New(ctx, cfg.Cart.NormalizedBackend(), cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	var lock cron.Lock = &cron.LocalLock{}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey("cart-retention:"+cfg.App.Env), cfg.Cart.RetentionInterval)
		if err != nil {
			logg.Error(ctx, "failed to create cron lock", err)
			os.Exit(1)
		}
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	retention, err := cron.NewCartRetentionJob(cron.CartRetentionJobParams{
		Logger:    logg,
		Storage:   cart.NewSQLStorage(dbClient.DB()),
		Metrics:   jobMetrics,
		Retention: cfg.Cart.Retention,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart retention job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(retention),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cart.RetentionInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}
