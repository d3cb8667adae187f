package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/config"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/db"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	opts := options{}
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", "", "migrations directory on disk (empty uses the embedded set)")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	if err := run(opts, logg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(opts options, logg *logger.Logger) error {
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name")
		}
		path, err := migrate.CreateSQLMigration(sourceDir(opts.dir), opts.name, time.Now())
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		var err error
		if opts.dir == "" {
			err = migrate.ValidateEmbedded()
		} else {
			err = migrate.ValidateDir(opts.dir)
		}
		if err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Cart.IsSQL() {
		return fmt.Errorf("cart backend %q has no schema to migrate", cfg.Cart.Backend)
	}
	logg = logger.FromConfig("migrate", cfg.App)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"cmd":     opts.cmd,
		"dir":     opts.dir,
		"backend": cfg.Cart.NormalizedBackend(),
	})

	dbClient, err := db.New(ctx, cfg.Cart.NormalizedBackend(), cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.SQL()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	logg.Info(ctx, "migrate ready")

	switch opts.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, dbClient.Dialect(), opts.dir, opts.cmd)
	case "version":
		if opts.version == "" {
			return errors.New("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, dbClient.Dialect(), opts.dir, opts.version)
	default:
		return fmt.Errorf("unknown command %q", opts.cmd)
	}
}

func sourceDir(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}
