package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Storage       StorageConfig
	Redis         RedisConfig
	Catalog       CatalogConfig
	Search        SearchConfig
	Cart          CartConfig
	Theme         ThemeConfig
	Pricing       PricingConfig
	Notifications NotificationsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:8081,http://localhost:19006"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the local key-value backend the cart and theme persist to.
type StorageConfig struct {
	Driver      string `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"STOREFRONT_SQLITE_PATH" default:"storefront.db"`
	DSN         string `envconfig:"STOREFRONT_DB_DSN"`
	AutoMigrate bool   `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQL reports whether the configured driver is backed by gorm.
func (s StorageConfig) IsSQL() bool {
	return s.Driver == StorageDriverSQLite || s.Driver == StorageDriverPostgres
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CatalogConfig struct {
	BaseURL    string        `envconfig:"STOREFRONT_CATALOG_BASE_URL" default:"https://swapi.dev/api"`
	Timeout    time.Duration `envconfig:"STOREFRONT_CATALOG_TIMEOUT" default:"15s"`
	RatePerSec float64       `envconfig:"STOREFRONT_CATALOG_RATE_PER_SEC" default:"5"`
	RateBurst  int           `envconfig:"STOREFRONT_CATALOG_RATE_BURST" default:"5"`
	MaxPages   int           `envconfig:"STOREFRONT_CATALOG_MAX_PAGES" default:"0"`
	PageLimit  int           `envconfig:"STOREFRONT_CATALOG_PAGE_LIMIT" default:"25"`
}

type SearchConfig struct {
	Debounce time.Duration `envconfig:"STOREFRONT_SEARCH_DEBOUNCE" default:"400ms"`
}

type CartConfig struct {
	StorageKey  string `envconfig:"STOREFRONT_CART_STORAGE_KEY" default:"@noon_cart"`
	MaxQuantity int    `envconfig:"STOREFRONT_CART_MAX_QUANTITY" default:"5"`
}

type ThemeConfig struct {
	StorageKey string `envconfig:"STOREFRONT_THEME_STORAGE_KEY" default:"@noon_theme_preference"`
}

type PricingConfig struct {
	TaxRate  float64 `envconfig:"STOREFRONT_TAX_RATE" default:"0.05"`
	Currency string  `envconfig:"STOREFRONT_CURRENCY" default:"AED"`
}

type NotificationsConfig struct {
	SubscriberBuffer int `envconfig:"STOREFRONT_NOTIFICATIONS_BUFFER" default:"16"`
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return fmt.Errorf("%s is required for the sqlite driver", EnvSQLitePath)
		}
	case StorageDriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("%s is required for the postgres driver", EnvDBDSN)
		}
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis driver", EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}

	if _, err := url.ParseRequestURI(c.Catalog.BaseURL); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvCatalogBaseURL, err)
	}
	if c.Cart.MaxQuantity <= 0 {
		return fmt.Errorf("%s must be positive", EnvCartMaxQuantity)
	}
	if c.Pricing.TaxRate < 0 {
		return fmt.Errorf("%s must not be negative", EnvTaxRate)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("%s must not be negative", EnvSearchDebounce)
	}
	return nil
}
