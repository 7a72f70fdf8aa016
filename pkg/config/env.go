package config

const EnvPrefix = "STOREFRONT"

const (
	EnvAppEnv         = "STOREFRONT_APP_ENV"
	EnvPort           = "STOREFRONT_APP_PORT"
	EnvLogLevel       = "STOREFRONT_LOG_LEVEL"
	EnvCatalogURL     = "STOREFRONT_CATALOG_URL"
	EnvStorageDriver  = "STOREFRONT_STORAGE_DRIVER"
	EnvDBDSN          = "STOREFRONT_DB_DSN"
	EnvDBDriver       = "STOREFRONT_DB_DRIVER"
	EnvRedisURL       = "STOREFRONT_REDIS_URL"
	EnvSuccessDelay   = "STOREFRONT_CHECKOUT_SUCCESS_DELAY"
	EnvAddedFlashWait = "STOREFRONT_CHECKOUT_ADDED_FLASH_DELAY"
	EnvIdempotencyTTL = "STOREFRONT_CHECKOUT_IDEMPOTENCY_TTL"

	EnvSessionIdleTTL  = "STOREFRONT_SESSION_IDLE_TTL"
	EnvSessionSweepInt = "STOREFRONT_SESSION_SWEEP_INTERVAL"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)
