package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/controllers"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/cart"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/config"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/db"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/migrate"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/redis"
)

// backend bundles the cart storage with the clients it owns.
type backend struct {
	storage cart.Storage
	redis   *redis.Client
	checks  []controllers.HealthCheck
	closers []func() error
}

func (b *backend) Close() error {
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i]())
	}
	return err
}

func openBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backend, error) {
	b := &backend{}

	if cfg.Redis.Enabled() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		b.redis = client
		b.closers = append(b.closers, client.Close)
		b.checks = append(b.checks, controllers.HealthCheck{Name: "redis", Pinger: client})
	}

	switch cfg.Cart.NormalizedBackend() {
	case config.CartBackendMemory:
		b.storage = cart.NewMemoryStorage()
	case config.CartBackendRedis:
		storage := cart.NewRedisStorage(b.redis, cfg.Cart.TTL)
		b.storage = storage
		b.checks = append(b.checks, controllers.HealthCheck{Name: "storage", Pinger: storage})
	case config.CartBackendSQLite, config.CartBackendPostgres:
		client, err := db.New(ctx, cfg.Cart.NormalizedBackend(), cfg.DB, logg)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("bootstrap database: %w", err), b.Close())
		}
		b.closers = append(b.closers, client.Close)
		if err := migrate.MaybeAutoRun(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(fmt.Errorf("run migrations: %w", err), b.Close())
		}
		storage := cart.NewSQLStorage(client.DB())
		b.storage = storage
		b.checks = append(b.checks, controllers.HealthCheck{Name: "storage", Pinger: storage})
	default:
		return nil, multierr.Append(fmt.Errorf("unsupported cart backend %q", cfg.Cart.Backend), b.Close())
	}
	return b, nil
}
