package config

const EnvPrefix = "VENDORA"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error
// messages). Keep in sync with the envconfig tags below.
const (
	EnvAppEnv   = "VENDORA_APP_ENV"
	EnvPort     = "VENDORA_APP_PORT"
	EnvLogLevel = "VENDORA_LOG_LEVEL"

	EnvDBDSN  = "VENDORA_DB_DSN"
	EnvDBHost = "VENDORA_DB_HOST"
	EnvDBUser = "VENDORA_DB_USER"
	EnvDBName = "VENDORA_DB_NAME"

	EnvRedisURL = "VENDORA_REDIS_URL"

	EnvJWTSecret  = "VENDORA_JWT_SECRET"
	EnvJWTIssuer  = "VENDORA_JWT_ISSUER"
	EnvJWTExpMins = "VENDORA_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "VENDORA_GCP_PROJECT_ID"

	EnvPubSubDomainTopic  = "VENDORA_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub    = "VENDORA_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvPubSubAnalyticsSub = "VENDORA_PUBSUB_ANALYTICS_SUBSCRIPTION"

	EnvSquareAccessToken   = "VENDORA_SQUARE_ACCESS_TOKEN"
	EnvSquareWebhookSecret = "VENDORA_SQUARE_WEBHOOK_SECRET"

	EnvEnginePlatformAccountID = "VENDORA_ENGINE_PLATFORM_ACCOUNT_ID"
	EnvEngineVATRate           = "VENDORA_ENGINE_VAT_RATE"
	EnvEngineCommissionRate    = "VENDORA_ENGINE_COMMISSION_RATE"
	EnvEngineHighValueLimit    = "VENDORA_ENGINE_HIGH_VALUE_THRESHOLD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
