package config

const EnvPrefix = "SWIFTCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	CartBackendMemory   = "memory"
	CartBackendRedis    = "redis"
	CartBackendSQLite   = "sqlite"
	CartBackendPostgres = "postgres"
)

const (
	EnvAppEnv         = "SWIFTCART_APP_ENV"
	EnvCartBackend    = "SWIFTCART_CART_BACKEND"
	EnvCartStorageKey = "SWIFTCART_CART_STORAGE_KEY"
	EnvCardTitleMax   = "SWIFTCART_CARD_TITLE_MAX"
	EnvSessionSecret  = "SWIFTCART_SESSION_SECRET"
	EnvDBDSN          = "SWIFTCART_DB_DSN"
	EnvRedisURL       = "SWIFTCART_REDIS_URL"
	EnvRedisAddr      = "SWIFTCART_REDIS_ADDR"
)
