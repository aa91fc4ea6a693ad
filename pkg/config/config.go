package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "CROWDSPARK"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "CROWDSPARK_APP_ENV"
	EnvPort   = "CROWDSPARK_APP_PORT"
	EnvDBDSN  = "CROWDSPARK_DB_DSN"
	EnvDBHost = "CROWDSPARK_DB_HOST"
	EnvDBUser = "CROWDSPARK_DB_USER"
	EnvDBName = "CROWDSPARK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	Funding      FundingConfig
	Reconcile    ReconcileConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CROWDSPARK_APP_ENV" required:"true"`
	Port         string `envconfig:"CROWDSPARK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CROWDSPARK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CROWDSPARK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CROWDSPARK_DB_DSN"`
	Driver string `envconfig:"CROWDSPARK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CROWDSPARK_DB_HOST"`
	LegacyPort     int    `envconfig:"CROWDSPARK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CROWDSPARK_DB_USER"`
	LegacyPassword string `envconfig:"CROWDSPARK_DB_PASSWORD"`
	LegacyName     string `envconfig:"CROWDSPARK_DB_NAME"`
	LegacySSLMode  string `envconfig:"CROWDSPARK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CROWDSPARK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CROWDSPARK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CROWDSPARK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CROWDSPARK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CROWDSPARK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CROWDSPARK_REDIS_ADDR"`
	Password     string        `envconfig:"CROWDSPARK_REDIS_PASSWORD"`
	DB           int           `envconfig:"CROWDSPARK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CROWDSPARK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CROWDSPARK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CROWDSPARK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CROWDSPARK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CROWDSPARK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CROWDSPARK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CROWDSPARK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CROWDSPARK_JWT_EXPIRATION_MINUTES" default:"60"`
}

// GatewayConfig carries the payment gateway credentials. KeyID is surfaced to
// clients for the checkout widget; Secret never leaves the server.
type GatewayConfig struct {
	KeyID  string `envconfig:"CROWDSPARK_GATEWAY_KEY_ID" required:"true"`
	Secret string `envconfig:"CROWDSPARK_GATEWAY_SECRET" required:"true"`
}

// FundingConfig holds the donation-derived entitlement knobs. Amounts are in
// the smallest currency unit (paise).
type FundingConfig struct {
	PerProjectCost int64 `envconfig:"CROWDSPARK_PER_PROJECT_COST" default:"2500000"`
	MaxReapprovals int   `envconfig:"CROWDSPARK_MAX_REAPPROVALS" default:"3"`
}

type ReconcileConfig struct {
	OrderTTL     time.Duration `envconfig:"CROWDSPARK_RECONCILE_ORDER_TTL" default:"24h"`
	Interval     time.Duration `envconfig:"CROWDSPARK_RECONCILE_INTERVAL" default:"1h"`
	LockTTL      time.Duration `envconfig:"CROWDSPARK_RECONCILE_LOCK_TTL" default:"55m"`
	BatchSize    int           `envconfig:"CROWDSPARK_RECONCILE_BATCH_SIZE" default:"200"`
	MaxAttempts  int           `envconfig:"CROWDSPARK_RECONCILE_MAX_ATTEMPTS" default:"3"`
	RetryBackoff time.Duration `envconfig:"CROWDSPARK_RECONCILE_RETRY_BACKOFF" default:"2s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CROWDSPARK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
