package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Catalog  CatalogConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Checkout CheckoutConfig
	Session  SessionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.validate(cfg.Storage); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"STOREFRONT_CORS_ORIGINS"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CatalogConfig points at the remote GraphQL catalog/order API.
type CatalogConfig struct {
	URL              string        `envconfig:"STOREFRONT_CATALOG_URL" required:"true"`
	Timeout          time.Duration `envconfig:"STOREFRONT_CATALOG_TIMEOUT" default:"10s"`
	CacheTTL         time.Duration `envconfig:"STOREFRONT_CATALOG_CACHE_TTL" default:"1m"`
	BreakerFailures  uint32        `envconfig:"STOREFRONT_CATALOG_BREAKER_FAILURES" default:"5"`
	BreakerOpenDelay time.Duration `envconfig:"STOREFRONT_CATALOG_BREAKER_OPEN_DELAY" default:"30s"`
}

// StorageConfig selects the durable backend that holds cart blobs.
type StorageConfig struct {
	Driver    string `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"memory"`
	Namespace string `envconfig:"STOREFRONT_STORAGE_NAMESPACE" default:"sf"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(s.Driver) {
	case StorageDriverMemory, StorageDriverRedis, StorageDriverSQL:
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvStorageDriver, s.Driver)
}

// UsesRedis reports whether any component needs a redis connection.
func (s StorageConfig) UsesRedis() bool {
	return strings.EqualFold(s.Driver, StorageDriverRedis)
}

// UsesSQL reports whether carts are stored through gorm.
func (s StorageConfig) UsesSQL() bool {
	return strings.EqualFold(s.Driver, StorageDriverSQL)
}

type DBConfig struct {
	DSN         string `envconfig:"STOREFRONT_DB_DSN"`
	Driver      string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"STOREFRONT_DB_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate(storage StorageConfig) error {
	if !storage.UsesSQL() {
		return nil
	}
	if db.DSN == "" {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvStorageDriver, StorageDriverSQL)
	}
	switch strings.ToLower(db.Driver) {
	case DBDriverPostgres, DBDriverSQLite:
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// CheckoutConfig holds the timings of the cart overlay transitions.
type CheckoutConfig struct {
	SuccessDelay    time.Duration `envconfig:"STOREFRONT_CHECKOUT_SUCCESS_DELAY" default:"2s"`
	AddedFlashDelay time.Duration `envconfig:"STOREFRONT_CHECKOUT_ADDED_FLASH_DELAY" default:"2s"`
	IdempotencyTTL  time.Duration `envconfig:"STOREFRONT_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

func (c CheckoutConfig) validate() error {
	return requirePositive(map[string]time.Duration{
		EnvSuccessDelay:   c.SuccessDelay,
		EnvAddedFlashWait: c.AddedFlashDelay,
		EnvIdempotencyTTL: c.IdempotencyTTL,
	})
}

// SessionConfig bounds how long an untouched session stays in memory. Its cart
// survives eviction in the durable backend.
type SessionConfig struct {
	IdleTTL       time.Duration `envconfig:"STOREFRONT_SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"STOREFRONT_SESSION_SWEEP_INTERVAL" default:"1m"`
}

func (s SessionConfig) validate() error {
	return requirePositive(map[string]time.Duration{
		EnvSessionIdleTTL:  s.IdleTTL,
		EnvSessionSweepInt: s.SweepInterval,
	})
}

func requirePositive(values map[string]time.Duration) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, value)
		}
	}
	return nil
}
