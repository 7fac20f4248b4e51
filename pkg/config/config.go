package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Engine        EngineConfig
	Square        SquareConfig
	Webhooks      WebhooksConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Engine.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VENDORA_APP_ENV" required:"true"`
	Port         string `envconfig:"VENDORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VENDORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENDORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VENDORA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VENDORA_DB_DSN"`
	Driver string `envconfig:"VENDORA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VENDORA_DB_HOST"`
	LegacyPort     int    `envconfig:"VENDORA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VENDORA_DB_USER"`
	LegacyPassword string `envconfig:"VENDORA_DB_PASSWORD"`
	LegacyName     string `envconfig:"VENDORA_DB_NAME"`
	LegacySSLMode  string `envconfig:"VENDORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VENDORA_REDIS_ADDR"`
	Password     string        `envconfig:"VENDORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VENDORA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VENDORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VENDORA_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token TTL.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// AuthRateLimitConfig throttles credential endpoints. A zero window disables
// the limiter.
type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"VENDORA_AUTH_RL_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit    int           `envconfig:"VENDORA_AUTH_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"VENDORA_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VENDORA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VENDORA_AUTO_MIGRATE" default:"false"`
}

// EngineConfig holds the financial policy of the transition engine. The
// platform account is a fixed singleton so commission never depends on an ad
// hoc admin lookup.
type EngineConfig struct {
	VATRate            decimal.Decimal `envconfig:"VENDORA_ENGINE_VAT_RATE" default:"0.05"`
	CommissionRate     decimal.Decimal `envconfig:"VENDORA_ENGINE_COMMISSION_RATE" default:"0.10"`
	HighValueThreshold decimal.Decimal `envconfig:"VENDORA_ENGINE_HIGH_VALUE_THRESHOLD" default:"10000"`
	PlatformAccountID  uuid.UUID       `envconfig:"VENDORA_ENGINE_PLATFORM_ACCOUNT_ID" required:"true"`
	Currency           string          `envconfig:"VENDORA_ENGINE_CURRENCY" default:"AED"`
	OrderNumberDigits  int             `envconfig:"VENDORA_ENGINE_ORDER_NUMBER_DIGITS" default:"8"`
}

func (e EngineConfig) validate() error {
	if e.VATRate.IsNegative() || e.VATRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be in [0,1)", EnvEngineVATRate)
	}
	if e.CommissionRate.IsNegative() || e.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be in [0,1)", EnvEngineCommissionRate)
	}
	if e.HighValueThreshold.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvEngineHighValueLimit)
	}
	if e.PlatformAccountID == uuid.Nil {
		return fmt.Errorf("%s is required", EnvEnginePlatformAccountID)
	}
	return nil
}

type SquareConfig struct {
	AccessToken   string `envconfig:"VENDORA_SQUARE_ACCESS_TOKEN"`
	Env           string `envconfig:"VENDORA_SQUARE_ENV" default:"sandbox"`
	WebhookSecret string `envconfig:"VENDORA_SQUARE_WEBHOOK_SECRET"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type WebhooksConfig struct {
	TrackingSecret string        `envconfig:"VENDORA_WEBHOOK_TRACKING_SECRET"`
	IdempotencyTTL time.Duration `envconfig:"VENDORA_WEBHOOK_IDEMPOTENCY_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VENDORA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"VENDORA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VENDORA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic           string `envconfig:"VENDORA_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription    string `envconfig:"VENDORA_PUBSUB_DOMAIN_SUBSCRIPTION"`
	AnalyticsSubscription string `envconfig:"VENDORA_PUBSUB_ANALYTICS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset            string `envconfig:"VENDORA_BIGQUERY_DATASET" default:"vendora"`
	LedgerRevenueTable string `envconfig:"VENDORA_BIGQUERY_LEDGER_TABLE" default:"ledger_revenue"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"VENDORA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"VENDORA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"VENDORA_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"VENDORA_OUTBOX_IDEMPOTENCY_TTL" default:"168h"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"VENDORA_CRON_INTERVAL" default:"1m"`
	LockTTL             time.Duration `envconfig:"VENDORA_CRON_LOCK_TTL" default:"5m"`
	OutboxRetentionDays int           `envconfig:"VENDORA_CRON_OUTBOX_RETENTION_DAYS" default:"14"`
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
