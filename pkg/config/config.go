package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	Catalog    CatalogConfig
	Cart       CartConfig
	Render     RenderConfig
	Session    SessionConfig
	DB         DBConfig
	Redis      RedisConfig
	Newsletter NewsletterConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.App.IsProd() {
		cfg.Session.Secure = true
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SWIFTCART_APP_ENV" required:"true"`
	Port         string `envconfig:"SWIFTCART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SWIFTCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SWIFTCART_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"SWIFTCART_LOG_FORMAT" default:"json"`
	AutoMigrate  bool   `envconfig:"SWIFTCART_AUTO_MIGRATE" default:"false"`

	CORSOrigins []string `envconfig:"SWIFTCART_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CatalogConfig struct {
	BaseURL       string        `envconfig:"SWIFTCART_CATALOG_BASE_URL" default:"https://fakestoreapi.com/products"`
	Timeout       time.Duration `envconfig:"SWIFTCART_CATALOG_TIMEOUT" default:"10s"`
	TrendingLimit int           `envconfig:"SWIFTCART_TRENDING_LIMIT" default:"3"`
}

type CartConfig struct {
	Backend    string        `envconfig:"SWIFTCART_CART_BACKEND" default:"sqlite"`
	StorageKey string        `envconfig:"SWIFTCART_CART_STORAGE_KEY" default:"swiftcart_cart_v1"`
	TTL        time.Duration `envconfig:"SWIFTCART_CART_TTL" default:"0"`

	// Retention applies to the SQL backends only; redis carts expire through TTL.
	Retention         time.Duration `envconfig:"SWIFTCART_CART_RETENTION" default:"720h"`
	RetentionInterval time.Duration `envconfig:"SWIFTCART_CART_RETENTION_INTERVAL" default:"1h"`
}

// IsSQL reports whether carts are stored through GORM.
func (c CartConfig) IsSQL() bool {
	switch c.NormalizedBackend() {
	case CartBackendSQLite, CartBackendPostgres:
		return true
	}
	return false
}

// NormalizedBackend returns the lower-cased backend name.
func (c CartConfig) NormalizedBackend() string {
	return strings.ToLower(strings.TrimSpace(c.Backend))
}

type RenderConfig struct {
	CardTitleMax int `envconfig:"SWIFTCART_CARD_TITLE_MAX" default:"40"`
	CartTitleMax int `envconfig:"SWIFTCART_CART_TITLE_MAX" default:"50"`
}

type SessionConfig struct {
	Secret     string        `envconfig:"SWIFTCART_SESSION_SECRET" required:"true"`
	Issuer     string        `envconfig:"SWIFTCART_SESSION_ISSUER" default:"swiftcart"`
	TTL        time.Duration `envconfig:"SWIFTCART_SESSION_TTL" default:"720h"`
	CookieName string        `envconfig:"SWIFTCART_SESSION_COOKIE" default:"swiftcart_session"`
	Secure     bool          `envconfig:"SWIFTCART_SESSION_SECURE" default:"false"`
}

type DBConfig struct {
	DSN string `envconfig:"SWIFTCART_DB_DSN" default:"swiftcart.db"`

	MaxOpenConns    int           `envconfig:"SWIFTCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SWIFTCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SWIFTCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SWIFTCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQuery time.Duration `envconfig:"SWIFTCART_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SWIFTCART_REDIS_URL"`
	Address      string        `envconfig:"SWIFTCART_REDIS_ADDR"`
	Password     string        `envconfig:"SWIFTCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"SWIFTCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SWIFTCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SWIFTCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SWIFTCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SWIFTCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SWIFTCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether enough settings are present to dial Redis.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type NewsletterConfig struct {
	Window time.Duration `envconfig:"SWIFTCART_NEWSLETTER_WINDOW" default:"1m"`
	Limit  int           `envconfig:"SWIFTCART_NEWSLETTER_LIMIT" default:"5"`
}

func (c *Config) validate() error {
	switch c.Cart.NormalizedBackend() {
	case CartBackendMemory, CartBackendSQLite:
	case CartBackendRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("%s or %s is required for the redis cart backend", EnvRedisURL, EnvRedisAddr)
		}
	case CartBackendPostgres:
		if !strings.HasPrefix(c.DB.DSN, "postgres://") && !strings.HasPrefix(c.DB.DSN, "postgresql://") {
			return fmt.Errorf("%s must be a postgres URL for the postgres cart backend", EnvDBDSN)
		}
	default:
		return fmt.Errorf("unsupported cart backend %q", c.Cart.Backend)
	}
	if strings.TrimSpace(c.Cart.StorageKey) == "" {
		return fmt.Errorf("%s must not be empty", EnvCartStorageKey)
	}
	if c.Render.CardTitleMax <= 0 || c.Render.CartTitleMax <= 0 {
		return fmt.Errorf("title limits must be positive")
	}
	return nil
}
