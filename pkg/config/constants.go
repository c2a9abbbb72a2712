package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry explicit
	// SPOOL_* names so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "SPOOL_APP_ENV"
	EnvPort      = "SPOOL_APP_PORT"
	EnvDBDSN     = "SPOOL_DB_DSN"
	EnvDBHost    = "SPOOL_DB_HOST"
	EnvDBUser    = "SPOOL_DB_USER"
	EnvDBName    = "SPOOL_DB_NAME"
	EnvRedisURL  = "SPOOL_REDIS_URL"
	EnvJWTSecret = "SPOOL_JWT_SECRET"
	EnvJWTIssuer = "SPOOL_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
