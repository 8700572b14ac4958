package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	// StorageBackendRedis keeps session state in Redis; StorageBackendDatabase
	// keeps it in the relational kv table.
	StorageBackendRedis    = "redis"
	StorageBackendDatabase = "database"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.Backend == StorageBackendDatabase {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPMART_APP_ENV" default:"dev"`
	Port         string `envconfig:"SHOPMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SHOPMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	Backend string `envconfig:"SHOPMART_STORAGE_BACKEND" default:"database"`
}

func (s *StorageConfig) validate() error {
	backend := strings.ToLower(strings.TrimSpace(s.Backend))
	switch backend {
	case StorageBackendRedis, StorageBackendDatabase:
		s.Backend = backend
		return nil
	default:
		return fmt.Errorf("unsupported storage backend %q", s.Backend)
	}
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPMART_DB_DSN"`
	Driver string `envconfig:"SHOPMART_DB_DRIVER" default:"sqlite"`

	Host     string `envconfig:"SHOPMART_DB_HOST"`
	Port     int    `envconfig:"SHOPMART_DB_PORT" default:"5432"`
	User     string `envconfig:"SHOPMART_DB_USER"`
	Password string `envconfig:"SHOPMART_DB_PASSWORD"`
	Name     string `envconfig:"SHOPMART_DB_NAME"`
	SSLMode  string `envconfig:"SHOPMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPMART_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SHOPMART_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = "shopmart.db"
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"SHOPMART_DB_HOST": db.Host,
		"SHOPMART_DB_USER": db.User,
		"SHOPMART_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either SHOPMART_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPMART_REDIS_URL"`
	Address      string        `envconfig:"SHOPMART_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// UpstreamConfig points at the remote e-commerce API the storefront proxies.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"SHOPMART_UPSTREAM_BASE_URL" default:"https://ecommerce.routemisr.com/api/v1"`
	Timeout time.Duration `envconfig:"SHOPMART_UPSTREAM_TIMEOUT" default:"15s"`
}
