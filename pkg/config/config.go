package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Delivery     DeliveryConfig
	OTPRateLimit OTPRateLimitConfig
	SMS          SMSConfig
	Wallet       WalletConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"KLEER_APP_ENV" required:"true"`
	Port         string `envconfig:"KLEER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KLEER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KLEER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"KLEER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"KLEER_DB_DSN"`
	Driver string `envconfig:"KLEER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KLEER_DB_HOST"`
	LegacyPort     int    `envconfig:"KLEER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KLEER_DB_USER"`
	LegacyPassword string `envconfig:"KLEER_DB_PASSWORD"`
	LegacyName     string `envconfig:"KLEER_DB_NAME"`
	LegacySSLMode  string `envconfig:"KLEER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KLEER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KLEER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KLEER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KLEER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KLEER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KLEER_REDIS_ADDR"`
	Password     string        `envconfig:"KLEER_REDIS_PASSWORD"`
	DB           int           `envconfig:"KLEER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KLEER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KLEER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KLEER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KLEER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KLEER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KLEER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KLEER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KLEER_JWT_EXPIRATION_MINUTES" required:"true"`
}

// DeliveryConfig bounds the confirmation code lifecycle. The defaults
// mirror production behavior: codes live for 24 hours, a recipient can
// ask for at most 3 resends per hour, and failed attempt counters decay
// after 30 minutes.
type DeliveryConfig struct {
	OTPTTL           time.Duration `envconfig:"KLEER_DELIVERY_OTP_TTL" default:"24h"`
	ResendLimit      int           `envconfig:"KLEER_DELIVERY_RESEND_LIMIT" default:"3"`
	ResendWindow     time.Duration `envconfig:"KLEER_DELIVERY_RESEND_WINDOW" default:"1h"`
	FailedAttemptTTL time.Duration `envconfig:"KLEER_DELIVERY_FAILED_ATTEMPT_TTL" default:"30m"`
}

// OTPRateLimitConfig throttles the verification endpoint at the edge. This
// sits in front of the per-shipment failed attempt counters and only exists
// to blunt scripted guessing.
type OTPRateLimitConfig struct {
	VerifyWindow        time.Duration `envconfig:"KLEER_OTP_VERIFY_WINDOW" default:"1m"`
	VerifyIPLimit       int           `envconfig:"KLEER_OTP_VERIFY_IP_LIMIT" default:"30"`
	VerifyTrackingLimit int           `envconfig:"KLEER_OTP_VERIFY_TRACKING_LIMIT" default:"10"`
}

type SMSConfig struct {
	Provider         string `envconfig:"KLEER_SMS_PROVIDER" default:"console"`
	TwilioAccountSID string `envconfig:"KLEER_TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"KLEER_TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `envconfig:"KLEER_TWILIO_FROM_NUMBER"`
}

type WalletConfig struct {
	// Commission retained by the platform, in basis points (1000 = 10%).
	DefaultCommissionBP int `envconfig:"KLEER_WALLET_DEFAULT_COMMISSION_BP" default:"1000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KLEER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KLEER_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KLEER_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"KLEER_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KLEER_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DeliveryTopic        string `envconfig:"KLEER_PUBSUB_DELIVERY_TOPIC" default:"kleer-delivery-events"`
	DeliverySubscription string `envconfig:"KLEER_PUBSUB_DELIVERY_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"KLEER_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"KLEER_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"KLEER_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"KLEER_OUTBOX_RETENTION" default:"168h"`
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
