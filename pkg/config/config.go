package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Idempotency  IdempotencyConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

// Load reads the environment using THOUESA_SERVICE_KIND (default "api") to
// decide which service-specific settings are required.
func Load() (*Config, error) {
	return LoadService("")
}

// LoadService is Load for a known binary; a non-empty kind overrides
// THOUESA_SERVICE_KIND.
func LoadService(kind string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if kind != "" {
		cfg.Service.Kind = kind
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"THOUESA_APP_ENV" required:"true"`
	Port         string `envconfig:"THOUESA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"THOUESA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"THOUESA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"THOUESA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"THOUESA_DB_DSN"`
	Driver string `envconfig:"THOUESA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"THOUESA_DB_HOST"`
	Port     int    `envconfig:"THOUESA_DB_PORT" default:"5432"`
	User     string `envconfig:"THOUESA_DB_USER"`
	Password string `envconfig:"THOUESA_DB_PASSWORD"`
	Name     string `envconfig:"THOUESA_DB_NAME"`
	SSLMode  string `envconfig:"THOUESA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"THOUESA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"THOUESA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"THOUESA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"THOUESA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"THOUESA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"THOUESA_REDIS_ADDR"`
	Password     string        `envconfig:"THOUESA_REDIS_PASSWORD"`
	DB           int           `envconfig:"THOUESA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"THOUESA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"THOUESA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"THOUESA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"THOUESA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"THOUESA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"THOUESA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"THOUESA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"THOUESA_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"THOUESA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:3001"`
}

type RateLimitConfig struct {
	PublicWindow  time.Duration `envconfig:"THOUESA_RATE_LIMIT_PUBLIC_WINDOW" default:"1m"`
	PublicIPLimit int           `envconfig:"THOUESA_RATE_LIMIT_PUBLIC_IP_LIMIT" default:"60"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"THOUESA_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"THOUESA_AUTO_MIGRATE" default:"false"`
}

// PricingConfig seeds the settings row the first time it is created.
type PricingConfig struct {
	DefaultJODPerKgJOToDZ string `envconfig:"THOUESA_PRICING_DEFAULT_JOD_PER_KG" default:"4.5"`
	DefaultDZDPerKgDZToJO string `envconfig:"THOUESA_PRICING_DEFAULT_DZD_PER_KG" default:"1100"`
	DefaultCommissionPct  string `envconfig:"THOUESA_PRICING_DEFAULT_COMMISSION_PERCENT" default:"0"`
}

// Defaults parses the seed values into decimals.
func (p PricingConfig) Defaults() (jodPerKg, dzdPerKg, commissionPct decimal.Decimal, err error) {
	if jodPerKg, err = decimal.NewFromString(p.DefaultJODPerKgJOToDZ); err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("%s: %w", EnvPricingJODPerKg, err)
	}
	if dzdPerKg, err = decimal.NewFromString(p.DefaultDZDPerKgDZToJO); err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("%s: %w", EnvPricingDZDPerKg, err)
	}
	if commissionPct, err = decimal.NewFromString(p.DefaultCommissionPct); err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("%s: %w", EnvPricingCommission, err)
	}
	return jodPerKg, dzdPerKg, commissionPct, nil
}

type GCPConfig struct {
	ProjectID              string `envconfig:"THOUESA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"THOUESA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"THOUESA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic   string `envconfig:"THOUESA_PUBSUB_ORDERS_TOPIC" default:"th-order-events"`
	PaymentsTopic string `envconfig:"THOUESA_PUBSUB_PAYMENTS_TOPIC" default:"th-payment-events"`
}

type BigQueryConfig struct {
	Dataset      string `envconfig:"THOUESA_BIGQUERY_DATASET" default:"thouesa"`
	FinanceTable string `envconfig:"THOUESA_BIGQUERY_FINANCE_TABLE" default:"finance_daily"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"THOUESA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"THOUESA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"THOUESA_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"THOUESA_OUTBOX_RETENTION" default:"720h"`
	RetentionBatch int           `envconfig:"THOUESA_OUTBOX_RETENTION_BATCH" default:"500"`
}

type CronConfig struct {
	Schedule      string        `envconfig:"THOUESA_CRON_SCHEDULE" default:"0 */15 * * * *"`
	Timezone      string        `envconfig:"THOUESA_CRON_TIMEZONE" default:"UTC"`
	LockTTL       time.Duration `envconfig:"THOUESA_CRON_LOCK_TTL" default:"10m"`
	ReviewOverdue time.Duration `envconfig:"THOUESA_CRON_REVIEW_OVERDUE_AFTER" default:"48h"`
}

func (c *Config) validate() error {
	missing := []string{}
	if c.Service.Kind == ServiceKindOutboxPublisher || c.Service.Kind == ServiceKindCron {
		if c.GCP.ProjectID == "" {
			missing = append(missing, EnvGCPProjectID)
		}
	}
	if c.Outbox.BatchSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvOutboxBatchSize)
	}
	if _, _, _, err := c.Pricing.Defaults(); err != nil {
		return fmt.Errorf("invalid pricing defaults: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config for %s: %s", c.Service.Kind, strings.Join(missing, ", "))
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
