package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable consumed by the service.
	EnvPrefix = "IFRUITS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "IFRUITS_DB_DSN"
	EnvDBHost = "IFRUITS_DB_HOST"
	EnvDBUser = "IFRUITS_DB_USER"
	EnvDBName = "IFRUITS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
	Cron         CronConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"IFRUITS_APP_ENV" required:"true"`
	Port         string `envconfig:"IFRUITS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"IFRUITS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"IFRUITS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"IFRUITS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"IFRUITS_DB_DSN"`
	Driver string `envconfig:"IFRUITS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"IFRUITS_DB_HOST"`
	LegacyPort     int    `envconfig:"IFRUITS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"IFRUITS_DB_USER"`
	LegacyPassword string `envconfig:"IFRUITS_DB_PASSWORD"`
	LegacyName     string `envconfig:"IFRUITS_DB_NAME"`
	LegacySSLMode  string `envconfig:"IFRUITS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"IFRUITS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"IFRUITS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"IFRUITS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"IFRUITS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"IFRUITS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"IFRUITS_REDIS_ADDR"`
	Password     string        `envconfig:"IFRUITS_REDIS_PASSWORD"`
	DB           int           `envconfig:"IFRUITS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"IFRUITS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"IFRUITS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"IFRUITS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"IFRUITS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"IFRUITS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PricingConfig tunes quote computation.
type PricingConfig struct {
	ServiceFeeCents int64  `envconfig:"IFRUITS_PRICING_SERVICE_FEE_CENTS" default:"99"`
	Currency        string `envconfig:"IFRUITS_PRICING_CURRENCY" default:"BRL"`
}

// CheckoutConfig tunes cart/draft lifetimes.
type CheckoutConfig struct {
	CartTTL time.Duration `envconfig:"IFRUITS_CHECKOUT_CART_TTL" default:"72h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"IFRUITS_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"IFRUITS_CRON_LOCK_TTL" default:"2h"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"IFRUITS_GCP_PROJECT_ID"`
	CredentialsFile string `envconfig:"IFRUITS_GCP_CREDENTIALS_FILE"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"IFRUITS_PUBSUB_DOMAIN_TOPIC" default:"ifruits-domain-events"`
	DomainSubscription string `envconfig:"IFRUITS_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"IFRUITS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"IFRUITS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"IFRUITS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"IFRUITS_OUTBOX_RETENTION_DAYS" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"IFRUITS_AUTO_MIGRATE" default:"false"`
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
