package config

// EnvPrefix is passed to envconfig; every variable also carries an
// explicit KLEER_ tag so the prefix mostly matters for error messages.
const EnvPrefix = "kleer"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "KLEER_APP_ENV"
	EnvPort       = "KLEER_APP_PORT"
	EnvRedisURL   = "KLEER_REDIS_URL"
	EnvJWTSecret  = "KLEER_JWT_SECRET"
	EnvJWTIssuer  = "KLEER_JWT_ISSUER"
	EnvJWTExpMins = "KLEER_JWT_EXPIRATION_MINUTES"

	EnvDBDSN  = "KLEER_DB_DSN"
	EnvDBHost = "KLEER_DB_HOST"
	EnvDBUser = "KLEER_DB_USER"
	EnvDBName = "KLEER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
