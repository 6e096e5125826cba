package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
	StorageDriverMemory   = "memory"
)

const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvPort            = "STOREFRONT_APP_PORT"
	EnvLogLevel        = "STOREFRONT_LOG_LEVEL"
	EnvStorageDriver   = "STOREFRONT_STORAGE_DRIVER"
	EnvSQLitePath      = "STOREFRONT_SQLITE_PATH"
	EnvDBDSN           = "STOREFRONT_DB_DSN"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvRedisAddr       = "STOREFRONT_REDIS_ADDR"
	EnvCatalogBaseURL  = "STOREFRONT_CATALOG_BASE_URL"
	EnvCatalogMaxPages = "STOREFRONT_CATALOG_MAX_PAGES"
	EnvSearchDebounce  = "STOREFRONT_SEARCH_DEBOUNCE"
	EnvCartMaxQuantity = "STOREFRONT_CART_MAX_QUANTITY"
	EnvTaxRate         = "STOREFRONT_TAX_RATE"
)
