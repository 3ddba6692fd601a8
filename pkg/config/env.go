package config

const (
	EnvPrefix = "THOUESA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	ServiceKindAPI             = "api"
	ServiceKindOutboxPublisher = "outbox-publisher"
	ServiceKindCron            = "cron-worker"
	ServiceKindMigrate         = "migrate"

	EnvAppEnv       = "THOUESA_APP_ENV"
	EnvPort         = "THOUESA_APP_PORT"
	EnvLogLevel     = "THOUESA_LOG_LEVEL"
	EnvLogWarnStack = "THOUESA_LOG_WARN_STACK"
	EnvServiceKind  = "THOUESA_SERVICE_KIND"

	EnvDBDSN      = "THOUESA_DB_DSN"
	EnvDBDriver   = "THOUESA_DB_DRIVER"
	EnvDBHost     = "THOUESA_DB_HOST"
	EnvDBPort     = "THOUESA_DB_PORT"
	EnvDBUser     = "THOUESA_DB_USER"
	EnvDBPassword = "THOUESA_DB_PASSWORD"
	EnvDBName     = "THOUESA_DB_NAME"
	EnvDBSSLMode  = "THOUESA_DB_SSLMODE"

	EnvRedisURL = "THOUESA_REDIS_URL"

	EnvJWTSecret  = "THOUESA_JWT_SECRET"
	EnvJWTIssuer  = "THOUESA_JWT_ISSUER"
	EnvJWTExpMins = "THOUESA_JWT_EXPIRATION_MINUTES"

	EnvCORSAllowedOrigins = "THOUESA_CORS_ALLOWED_ORIGINS"
	EnvAutoMigrate        = "THOUESA_AUTO_MIGRATE"

	EnvPricingJODPerKg   = "THOUESA_PRICING_DEFAULT_JOD_PER_KG"
	EnvPricingDZDPerKg   = "THOUESA_PRICING_DEFAULT_DZD_PER_KG"
	EnvPricingCommission = "THOUESA_PRICING_DEFAULT_COMMISSION_PERCENT"

	EnvGCPProjectID = "THOUESA_GCP_PROJECT_ID"

	EnvPubSubOrdersTopic   = "THOUESA_PUBSUB_ORDERS_TOPIC"
	EnvPubSubPaymentsTopic = "THOUESA_PUBSUB_PAYMENTS_TOPIC"

	EnvOutboxBatchSize = "THOUESA_OUTBOX_PUBLISH_BATCH_SIZE"

	EnvCronSchedule = "THOUESA_CRON_SCHEDULE"
)

var componentDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
