package migrate

import (
	"context"
	"fmt"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/config"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/db"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

// MaybeAutoRun applies the embedded migrations at startup when the auto-migrate
// flag is set or the app runs in dev. SQLite deployments always migrate since
// the file is local.
func MaybeAutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil || !shouldAutoRun(cfg.App, client.Dialect()) {
		return nil
	}

	if err := ValidateEmbedded(); err != nil {
		return fmt.Errorf("embedded migrations: %w", err)
	}
	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, client.Dialect(), "", "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}

func shouldAutoRun(app config.AppConfig, dialect string) bool {
	return app.AutoMigrate || app.IsDev() || dialect == db.DialectSQLite
}
