package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	CORS     CORSConfig     `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	AllowedMethods string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-default:"GET,PUT,POST,OPTIONS"`
	AllowedHeaders string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-default:"Content-Type"`
	MaxAge         int    `yaml:"max_age"         env:"CORS_MAX_AGE"         env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"  validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	RateLimit       int           `yaml:"rate_limit"       env:"SERVER_RATE_LIMIT"       env-default:"600"   validate:"min=0"`
}

// CatalogConfig describes the loaded universe and how queries page over it.
type CatalogConfig struct {
	// Offset and Limit select the window of the root index that is aggregated.
	Offset int `yaml:"offset" env:"CATALOG_OFFSET" env-default:"0"   validate:"min=0"`
	Limit  int `yaml:"limit"  env:"CATALOG_LIMIT"  env-default:"151" validate:"min=1,max=2000"`
	// URLLimit overrides the cross-reference bound. Zero derives it from the
	// highest id in the loaded index.
	URLLimit      int           `yaml:"url_limit"       env:"CATALOG_URL_LIMIT"       env-default:"0"   validate:"min=0"`
	PageLimit     int           `yaml:"page_limit"      env:"CATALOG_PAGE_LIMIT"      env-default:"20"  validate:"min=1"`
	MaxPageLimit  int           `yaml:"max_page_limit"  env:"CATALOG_MAX_PAGE_LIMIT"  env-default:"100" validate:"min=1"`
	RunTimeout    time.Duration `yaml:"run_timeout"     env:"CATALOG_RUN_TIMEOUT"     env-default:"5m"`
	WarmOnStart   bool          `yaml:"warm_on_start"   env:"CATALOG_WARM_ON_START"   env-default:"true"`
	RulesetLevels string        `yaml:"ruleset_levels"  env:"CATALOG_RULESET_LEVELS"  env-default:""`

	// Levels is parsed from RulesetLevels during validation.
	Levels map[string]string `yaml:"-" env:"-"`
}

// FetchConfig holds remote API client settings.
type FetchConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"FETCH_BASE_URL"        env-default:"https://pokeapi.co/api/v2" validate:"url"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"FETCH_REQUEST_TIMEOUT" env-default:"10s"`
	Concurrency    int           `yaml:"concurrency"     env:"FETCH_CONCURRENCY"     env-default:"16"  validate:"min=1,max=256"`
	RatePerSecond  float64       `yaml:"rate_per_second" env:"FETCH_RATE_PER_SECOND" env-default:"50"  validate:"gte=0"`
	Burst          int           `yaml:"burst"           env:"FETCH_BURST"           env-default:"20"  validate:"min=1"`
	BatchWait      time.Duration `yaml:"batch_wait"      env:"FETCH_BATCH_WAIT"      env-default:"5ms"`
	BatchCapacity  int           `yaml:"batch_capacity"  env:"FETCH_BATCH_CAPACITY"  env-default:"100" validate:"min=1"`
	UserAgent      string        `yaml:"user_agent"      env:"FETCH_USER_AGENT"      env-default:"pokecatalog"`
}

// CacheConfig selects and configures the persistent cache backend.
type CacheConfig struct {
	Driver     string        `yaml:"driver"      env:"CACHE_DRIVER"      env-default:"badger" validate:"oneof=memory badger sqlite postgres"`
	Path       string        `yaml:"path"        env:"CACHE_PATH"        env-default:"./data/cache"`
	SyncWrites bool          `yaml:"sync_writes" env:"CACHE_SYNC_WRITES" env-default:"true"`
	GCInterval time.Duration `yaml:"gc_interval" env:"CACHE_GC_INTERVAL" env-default:"10m"`
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres cache
// driver.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json" validate:"oneof=json text"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}
